package api

import (
	"errors"

	"github.com/dabhanushali/enacton-training/utils/response"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// MaxBodySize bounds request bodies; module uploads are the largest
const MaxBodySize = 210 << 20

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

func NewAPIServer(listenAddress string) *APIServer {
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:      "enacton-training-api",
			BodyLimit:    MaxBodySize,
			ErrorHandler: errorHandler,
		}),
		listenAddress: listenAddress,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	log.Info("[API] Starting API Server")
	log.Infof("[API] Listening on %s", s.listenAddress)

	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

// errorHandler keeps unhandled errors in the response envelope
func errorHandler(c *fiber.Ctx, err error) error {
	var e *fiber.Error
	if errors.As(err, &e) {
		return response.Error(c, e.Code, e.Message, "HTTP_ERROR")
	}
	log.Errorf("[API] unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return response.InternalServerError(c, "Internal server error")
}
