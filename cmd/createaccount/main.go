// Command createaccount seeds a portal account.
//
//	createaccount -name "Ada Obi" -email ada@example.com -role student -reg 2019/123456 -password secret
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/chibuike2003/palgunn/config"
	"github.com/chibuike2003/palgunn/internal/model"
	"github.com/chibuike2003/palgunn/internal/repository"
	"github.com/chibuike2003/palgunn/pkg/database"
	applogger "github.com/chibuike2003/palgunn/pkg/logger"
)

func main() {
	var (
		name     = flag.String("name", "", "display name")
		email    = flag.String("email", "", "login email")
		role     = flag.String("role", model.RoleStudent, "admin, lecturer or student")
		reg      = flag.String("reg", "", "registration number (students)")
		password = flag.String("password", os.Getenv("PORTAL_ACCOUNT_PASSWORD"), "password (or PORTAL_ACCOUNT_PASSWORD)")
		cfgPath  = flag.String("config", os.Getenv("PORTAL_CONFIG"), "config file")
	)
	flag.Parse()

	account, err := buildAccount(*name, *email, *role, *reg, *password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "createaccount: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := repository.NewRepository(db)
	if err := repo.Account.Create(ctx, account); err != nil {
		if repository.IsUniqueViolation(err) {
			logger.Fatal("account already exists", zap.String("email", account.Email))
		}
		logger.Fatal("create account", zap.Error(err))
	}

	logger.Info("account created",
		zap.String("account_id", account.AccountID),
		zap.String("email", account.Email),
		zap.String("role", account.Role),
	)
}

// buildAccount validates the flags and hashes the password.
func buildAccount(name, email, role, reg, password string) (*model.Account, error) {
	name, email, role, reg = strings.TrimSpace(name), strings.TrimSpace(email), strings.TrimSpace(role), strings.TrimSpace(reg)

	switch {
	case name == "":
		return nil, fmt.Errorf("-name is required")
	case !strings.Contains(email, "@"):
		return nil, fmt.Errorf("-email must be an email address")
	case len(password) < 8:
		return nil, fmt.Errorf("-password must be at least 8 characters")
	}
	switch role {
	case model.RoleAdmin, model.RoleLecturer:
	case model.RoleStudent:
		if reg == "" {
			return nil, fmt.Errorf("-reg is required for students")
		}
	default:
		return nil, fmt.Errorf("-role must be admin, lecturer or student")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if reg != "" {
		account.RegNumber = &reg
	}
	return account, nil
}
