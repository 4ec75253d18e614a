package handler

import (
	"github.com/gofiber/fiber/v2"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	Session    *SessionHandler
	Health     *HealthHandler
	Reward     *RewardHandler
	Reflection *ReflectionHandler
	Assessment *AssessmentHandler
	Wellbeing  *WellbeingHandler
	TTS        *TTSHandler
	Proxy      *ProxyHandler
}

func SetupRoutes(app *fiber.App, h Handlers, authMiddleware fiber.Handler, proxyPath string) {
	// Health checks (public)
	app.Get("/health", h.Health.Health)
	app.Get("/ready", h.Health.Ready)

	// Guard decision for the page script
	app.Get("/session", h.Session.Status)

	// Auth routes (public)
	app.Get("/verify-email", h.Auth.VerifyEmailPrompt)
	api := app.Group("/api")
	api.Post("/login", h.Auth.Login)
	api.Post("/logout", h.Auth.Logout)
	api.Post("/verify-email", h.Auth.VerifyEmail)
	api.Post("/resend-verification", h.Auth.ResendVerification)
	api.Post("/forgot-password", h.Auth.ForgotPassword)
	api.Post("/reset-password", h.Auth.ResetPassword)
	api.Post("/contact", h.Wellbeing.Contact)

	// Text-to-speech (protected)
	api.Post("/tts", authMiddleware, h.TTS.Speak)

	// Thrive tokens (protected)
	app.Get("/dashboard", authMiddleware, h.Reward.Dashboard)
	app.Get("/rewards", authMiddleware, h.Reward.Catalog)
	app.Get("/rewards/overview", authMiddleware, h.Reward.Overview)
	app.Get("/rewards/:id", authMiddleware, h.Reward.Reward)
	app.Get("/rewards/:id/redemption", authMiddleware, h.Reward.Redemption)
	app.Post("/rewards/:id/redeem", authMiddleware, h.Reward.RequestRedemption)
	app.Post("/rewards/:id/redeem/cancel", authMiddleware, h.Reward.CancelRedemption)
	app.Post("/rewards/:id/redeem/confirm", authMiddleware, h.Reward.ConfirmRedemption)

	// Check-in reflection (protected)
	app.Get("/reflection", authMiddleware, h.Reflection.Show)
	app.Post("/reflection", authMiddleware, h.Reflection.Submit)
	app.Post("/reflection/skip", authMiddleware, h.Reflection.Skip)
	app.Post("/reflection/new", authMiddleware, h.Reflection.Restart)

	// Assessments (protected)
	app.Get("/questionnaires", authMiddleware, h.Assessment.ListQuestionnaires)
	app.Get("/questionnaires/:id", authMiddleware, h.Assessment.GetQuestionnaire)
	app.Post("/questionnaires/:id/submit", authMiddleware, h.Assessment.SubmitQuestionnaire)
	app.Get("/pcl5/questions", authMiddleware, h.Assessment.PCL5Questions)
	app.Get("/pcl5/assessments", authMiddleware, h.Assessment.PCL5Assessments)
	app.Post("/pcl5/assessments", authMiddleware, h.Assessment.SubmitPCL5)

	// Wellbeing (protected)
	app.Get("/complaints", authMiddleware, h.Wellbeing.Complaints)
	app.Post("/complaints", authMiddleware, h.Wellbeing.CreateComplaint)
	app.Get("/bookings", authMiddleware, h.Wellbeing.Bookings)
	app.Get("/weekly-goals", authMiddleware, h.Wellbeing.WeeklyGoals)
	app.Post("/weekly-goals", authMiddleware, h.Wellbeing.CreateWeeklyGoal)

	// Same-origin relay for browser-side calls (protected)
	app.All(proxyPath+"/api/*", authMiddleware, h.Proxy.Forward)
}
