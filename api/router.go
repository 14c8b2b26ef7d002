// Package api contains all endpoints available
package api

import (
	"context"
	"fmt"
	"time"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"evsys/event-api/db"
	"evsys/event-api/internal"
	"evsys/event-api/internal/apperr"
	"evsys/event-api/internal/lifecycle"
	"evsys/event-api/internal/permission"
	"evsys/event-api/internal/service"
	"evsys/event-api/internal/storage"
	"evsys/event-api/internal/token"
	"evsys/event-api/internal/verification"
	"evsys/event-api/pkg/middleware"
	"evsys/event-api/pkg/security"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	Router *gin.Engine
	Deps   *internal.Deps
}

func NewRouter() (*API, error) {
	makeLogger()

	d := &internal.Deps{}

	conn, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	d.DB = conn

	signer, err := security.NewSigner(
		viper.GetString("jwt.secret"),
		time.Duration(viper.GetInt("jwt.access_ttl_min"))*time.Minute,
		time.Duration(viper.GetInt("jwt.refresh_ttl_days"))*24*time.Hour,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer, %w", err)
	}
	d.Signer = signer

	d.Argon = security.New()
	d.Tokens = token.NewIssuer(conn, signer)
	d.Ledger = verification.NewLedger(conn)
	d.Perms = permission.NewRegistry(conn)
	d.Mailer = service.NewMailer()

	switch viper.GetString("storage.type") {
	case "s3":
		d.Store, err = storage.NewS3()
	default:
		d.Store, err = storage.NewLocal(viper.GetString("storage.local_path"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage backend, %w", err)
	}

	d.Events = lifecycle.NewEventSystems(conn, d.Perms)
	d.Files = lifecycle.NewFiles(conn, d.Perms, d.Store)

	var sender service.PushSender
	if viper.GetBool("fcm.enabled") {
		sender, err = service.NewFcmSender(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize FCM client, %w", err)
		}
	}
	d.Notifications = service.NewNotifications(conn, sender)

	a := &API{Deps: d}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	if viper.GetString("storage.type") == "local" {
		router.Static("/media", viper.GetString("storage.local_path"))
	}

	auth := middleware.NewAuthMiddleware(d.Tokens)
	maxUploadSize := viper.GetInt64("upload.max_size")

	// Brute-force protection for everything that takes credentials or codes
	authLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 2,
		Burst:             5,
	})

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates an access token
		main.HEAD("/validate", auth, a.Validate)
	}

	users := main.Group("/users", middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/users		-> Returns the profile of a user
		users.GET("", auth, cacheFor(30), a.UserFetch)

		// POST /api/users 		-> Registers a new user
		users.POST("", authLimiter, a.UserRegister)

		// POST /api/users/verify	-> Confirms the email verification code
		users.POST("/verify", authLimiter, a.UserVerify)

		// POST /api/users/login 	-> Logs in a user and returns a token pair
		users.POST("/login", authLimiter, a.UserLogin)

		// POST /api/users/logout 	-> Revokes the tracked session
		users.POST("/logout", auth, a.UserLogout)

		// POST /api/users/refresh 	-> Exchanges a refresh token for a new pair
		users.POST("/refresh", a.UserRefresh)

		// POST /api/users/password/forgot -> Sends a password reset code
		users.POST("/password/forgot", authLimiter, a.PasswordForgot)

		// POST /api/users/password/reset  -> Confirms the reset code and sets a new password
		users.POST("/password/reset", authLimiter, a.PasswordReset)

		// DELETE /api/users 		-> Soft deletes the account
		users.DELETE("", auth, a.UserDelete)
	}

	systems := main.Group("/eventsystems", auth)
	{
		// POST /api/eventsystems	-> Creates an event system, creator becomes Owner
		systems.POST("", a.EventSystemCreate)

		// GET /api/eventsystems	-> Lists the caller's event systems
		systems.GET("", a.EventSystemList)

		// GET /api/eventsystems/:id	-> Returns one event system
		systems.GET("/:id", a.EventSystemFetch)

		// PATCH /api/eventsystems/:id/name	-> Renames an event system
		systems.PATCH("/:id/name", a.EventSystemRename)

		// PATCH /api/eventsystems/:id/status	-> Activates or deactivates
		systems.PATCH("/:id/status", a.EventSystemStatus)

		files := systems.Group("/:id/files")
		{
			// POST /api/eventsystems/:id/files	-> Uploads a new file
			files.POST("", middleware.BodySizeLimiter(maxUploadSize), a.FileUpload)

			// GET /api/eventsystems/:id/files	-> Lists the files
			files.GET("", a.FileList)

			// GET /api/eventsystems/:id/files/:fileID	-> Returns one file
			files.GET("/:fileID", a.FileFetch)

			// PATCH /api/eventsystems/:id/files/:fileID/name	-> Renames a file
			files.PATCH("/:fileID/name", a.FileRename)

			// PATCH /api/eventsystems/:id/files/:fileID/select	-> Selects or deselects
			files.PATCH("/:fileID/select", a.FileSelect)

			// DELETE /api/eventsystems/:id/files/:fileID	-> Deletes a file
			files.DELETE("/:fileID", a.FileDelete)
		}
	}

	fcm := main.Group("/fcm", auth, middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/fcm/register	-> Registers a push token for a session
		fcm.POST("/register", a.FcmRegister)

		// POST /api/fcm/subscribe	-> Subscribes the user's tokens to a topic
		fcm.POST("/subscribe", a.FcmSubscribe)

		// POST /api/fcm/unsubscribe	-> Unsubscribes the user's tokens from a topic
		fcm.POST("/unsubscribe", a.FcmUnsubscribe)
	}

	cleanupEvery := time.Duration(viper.GetInt("cleanup.interval_min")) * time.Minute
	service.VerificationCleanup(cleanupEvery, d.Ledger)
	service.FcmTokenCleanup(cleanupEvery, d.Notifications)

	return a, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}

// respondErr maps a domain error onto the standard JSON envelope. Unexpected
// errors are logged with their context, everything else is the caller's
// fault and only echoed back.
func respondErr(c *gin.Context, requestID string, err error, logMsg string) {
	if apperr.KindOf(err) == apperr.Unexpected {
		zap.L().Error(logMsg, zap.Error(err), zap.String("requestID", requestID))
	}

	c.AbortWithStatusJSON(apperr.Status(err), gin.H{
		"error":     apperr.Message(err),
		"requestID": requestID,
	})
}
