package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/corkboard/corkboard/kanban"
)

// Router wires the kanban service into HTTP routes.
type Router struct {
	svc      *kanban.Service
	logger   *zap.Logger
	origins  []string
	validate *validator.Validate
}

// NewRouter creates a Router. origins lists the allowed CORS origins; empty
// means allow all, which is only sensible behind a private load balancer.
func NewRouter(svc *kanban.Service, logger *zap.Logger, origins []string) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Router{
		svc:      svc,
		logger:   logger,
		origins:  origins,
		validate: validator.New(),
	}
}

// Setup configures all routes and middleware.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(rt.logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondData(w, "ok", nil)
	})

	users := &userHandler{rt}
	boards := &boardHandler{rt}
	lists := &listHandler{rt}
	tasks := &taskHandler{rt}
	attachments := &attachmentHandler{rt}
	images := &imageHandler{rt}

	r.Route("/user", func(r chi.Router) {
		r.Post("/", users.create)
		r.Get("/", users.get)
		r.Get("/{uid}/boards", boards.userBoards)
		r.Get("/{uid}/tasks", tasks.byAssignee)
	})

	r.Route("/board", func(r chi.Router) {
		r.Post("/", boards.create)
		r.Get("/{boardID}", boards.get)
		r.Put("/{boardID}", boards.update)
		r.Delete("/{boardID}", boards.delete)
		r.Put("/{boardID}/invite", boards.invite)
		r.Get("/{boardID}/users", boards.users)
		r.Delete("/{boardID}/users/{userID}", boards.removeUser)

		r.Route("/{boardID}/lists", func(r chi.Router) {
			r.Post("/", lists.create)
			r.Get("/", lists.forBoard)
			r.Put("/reorder", lists.reorder)
			r.Put("/{listID}", lists.update)
			r.Put("/{listID}/rename", lists.rename)
			r.Delete("/{listID}", lists.delete)
			r.Get("/{listID}/tasks", tasks.forList)
		})

		r.Route("/{boardID}/tasks", func(r chi.Router) {
			r.Post("/", tasks.create)
			r.Get("/", tasks.forBoard)
			r.Put("/reorder", tasks.reorder)
			r.Put("/{taskID}", tasks.update)
			r.Put("/{taskID}/move", tasks.move)
			r.Delete("/{taskID}", tasks.delete)
		})
	})

	r.Route("/attachment", func(r chi.Router) {
		r.Post("/upload-url", attachments.uploadURL)
		r.Post("/", attachments.create)
		r.Get("/task/{taskID}", attachments.forTask)
		r.Delete("/{attachmentID}/task/{taskID}", attachments.delete)
	})

	r.Route("/image", func(r chi.Router) {
		r.Get("/", images.list)
		r.Post("/", images.replace)
	})

	return r
}

// requestLogger logs one line per request, 2lar-style.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
