package routes

import (
	"time"

	"election-service/internal/api/handlers"
	"election-service/internal/api/middleware"
	"election-service/internal/database"
	"election-service/internal/models"
	"election-service/internal/repositories/postgres"
	"election-service/internal/services"
	"election-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Router struct {
	engine          *gin.Engine
	electionHandler *handlers.ElectionHandler
	voteHandler     *handlers.VoteHandler
	wsHandler       *handlers.WSHandler
	rateLimitMW     *middleware.RateLimitMiddleware
	authMW          *middleware.AuthMiddleware
}

// NewRouter wires repositories, services and handlers. The hub and event
// sink are constructed by the caller, which owns their lifecycles.
func NewRouter(
	hub *websocket.Hub,
	redisClient *redis.Client,
	db *gorm.DB,
	photos *database.MinIOClient,
	events services.VoteEventSink,
	jwtSecret string,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogAPI())

	electionRepo := postgres.NewElectionRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	tallyRepo := postgres.NewTallyRepository(db)

	electionService := services.NewElectionService(electionRepo, voteRepo)
	tallyService := services.NewTallyService(tallyRepo, electionRepo)
	voteService := services.NewVoteService(electionRepo, voteRepo, tallyRepo, hub, events)

	return &Router{
		engine:          engine,
		electionHandler: handlers.NewElectionHandler(electionService, photos),
		voteHandler:     handlers.NewVoteHandler(voteService, tallyService),
		wsHandler:       handlers.NewWSHandler(hub),
		rateLimitMW:     middleware.NewRateLimitMiddleware(redisClient),
		authMW:          middleware.NewAuthMiddleware(jwtSecret),
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")
	api.Use(r.authMW.RequireAuth())

	api.GET("/ws", r.wsHandler.HandleWebSocket)

	elections := api.Group("/elections")
	elections.Use(r.rateLimitMW.RateLimit(100, time.Minute))
	{
		elections.GET("", r.electionHandler.List)
		elections.GET("/:id", r.electionHandler.Get)
		elections.GET("/:id/results", r.voteHandler.Results)
		elections.POST("/:id/vote",
			r.authMW.RequireRole(models.RoleVoter),
			r.voteHandler.CastVote,
		)

		admin := elections.Group("")
		admin.Use(r.authMW.RequireRole(models.RoleAdmin))
		{
			admin.POST("", r.electionHandler.Create)
			admin.PUT("/:id", r.electionHandler.Update)
			admin.DELETE("/:id", r.electionHandler.Delete)
			admin.PUT("/:id/start", r.electionHandler.Start)
			admin.PUT("/:id/end", r.electionHandler.End)
			admin.POST("/:id/candidates", r.electionHandler.AddCandidate)
			admin.DELETE("/:id/candidates/:candidate_id", r.electionHandler.RemoveCandidate)
			admin.POST("/:id/voters", r.electionHandler.AddVoter)
			admin.DELETE("/:id/voters/:voter_id", r.electionHandler.RemoveVoter)
		}
	}

	api.GET("/stats",
		r.authMW.RequireRole(models.RoleAdmin),
		r.rateLimitMW.RateLimit(60, time.Minute),
		r.electionHandler.Stats,
	)
}
