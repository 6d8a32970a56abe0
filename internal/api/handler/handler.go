package handler

import "github.com/chibuike2003/palgunn/internal/service"

// Handler aggregates every HTTP handler.
type Handler struct {
	Auth        *AuthHandler
	Course      *CourseHandler
	Result      *ResultHandler
	Export      *ExportHandler
	Publication *PublicationHandler
	Student     *StudentHandler
	Activity    *ActivityHandler
}

// NewHandler wires handlers to their services. importMaxBytes caps the
// size of an uploaded results workbook.
func NewHandler(svc *service.Service, importMaxBytes int64) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Course:      NewCourseHandler(svc.Course),
		Result:      NewResultHandler(svc.Result, importMaxBytes),
		Export:      NewExportHandler(svc.Export),
		Publication: NewPublicationHandler(svc.Publication),
		Student:     NewStudentHandler(svc.StudentResult),
		Activity:    NewActivityHandler(svc.Activity),
	}
}
