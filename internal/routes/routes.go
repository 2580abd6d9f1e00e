package routes

import (
	"github.com/DevFelipeRT/EduMentorBack/internal/config"
	"github.com/DevFelipeRT/EduMentorBack/internal/handlers"
	"github.com/DevFelipeRT/EduMentorBack/internal/middleware"
	"github.com/DevFelipeRT/EduMentorBack/internal/repository"
	"github.com/DevFelipeRT/EduMentorBack/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	mentorshipRepo := repository.NewMentorshipRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	debitRepo := repository.NewDebitRepository(db)

	ledgerService := services.NewLedgerService(db, mentorshipRepo, paymentRepo, debitRepo)
	attendanceService := services.NewAttendanceService(db, attendanceRepo, ledgerService)
	sessionService := services.NewSessionService(db, sessionRepo, mentorshipRepo, attendanceRepo, ledgerService)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	studentHandler := handlers.NewStudentHandler(studentRepo)
	teacherHandler := handlers.NewTeacherHandler(teacherRepo)
	subjectHandler := handlers.NewSubjectHandler(subjectRepo)
	mentorshipHandler := handlers.NewMentorshipHandler(mentorshipRepo, paymentRepo, debitRepo, ledgerService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService, ledgerService)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	students := authProtected.Group("/students")
	students.Post("", studentHandler.Create)
	students.Get("", studentHandler.List)
	students.Get("/:id", studentHandler.Get)
	students.Put("/:id", studentHandler.Update)
	students.Delete("/:id", studentHandler.Delete)

	teachers := authProtected.Group("/teachers")
	teachers.Post("", teacherHandler.Create)
	teachers.Get("", teacherHandler.List)
	teachers.Get("/:id", teacherHandler.Get)
	teachers.Put("/:id", teacherHandler.Update)
	teachers.Delete("/:id", teacherHandler.Delete)

	subjects := authProtected.Group("/subjects")
	subjects.Post("", subjectHandler.Create)
	subjects.Get("", subjectHandler.List)
	subjects.Get("/:id", subjectHandler.Get)
	subjects.Put("/:id", subjectHandler.Update)
	subjects.Delete("/:id", subjectHandler.Delete)

	mentorships := authProtected.Group("/mentorships")
	mentorships.Post("", mentorshipHandler.Create)
	mentorships.Get("", mentorshipHandler.List)
	mentorships.Get("/:id", mentorshipHandler.Get)
	mentorships.Put("/:id", mentorshipHandler.Update)
	mentorships.Delete("/:id", mentorshipHandler.Delete)
	mentorships.Post("/:id/payments", mentorshipHandler.RegisterPayment)
	mentorships.Get("/:id/payments", mentorshipHandler.ListPayments)
	mentorships.Delete("/:id/payments/:payment_id", mentorshipHandler.DeletePayment)
	mentorships.Get("/:id/debits", mentorshipHandler.ListDebits)
	mentorships.Get("/:id/balance", mentorshipHandler.GetBalance)
	mentorships.Post("/:id/sessions", sessionHandler.CreateSession)
	mentorships.Get("/:id/sessions", sessionHandler.ListSessions)

	sessions := authProtected.Group("/sessions")
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Put("/:id", sessionHandler.UpdateSession)
	sessions.Post("/:id/cancel", sessionHandler.CancelSession)
	sessions.Delete("/:id", sessionHandler.DestroySession)
	sessions.Put("/:id/attendance", attendanceHandler.SetAttendance)
	sessions.Get("/:id/attendance", attendanceHandler.GetAttendance)
	sessions.Post("/:id/debit", attendanceHandler.RegisterDebit)
}
