package http

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/MKhiriev/go-mirror-keeper/internal/config"
	"github.com/MKhiriev/go-mirror-keeper/internal/logger"
	"github.com/MKhiriev/go-mirror-keeper/internal/service"
)

const defaultStreamPoll = time.Second

type Handler struct {
	services *service.ClientServices

	tokenSignKey string
	tokenIssuer  string
	hashKey      string

	upgrader   websocket.Upgrader
	streamPoll time.Duration

	logger *logger.Logger
}

func NewHandler(services *service.ClientServices, cfg *config.ClientConfig, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:     services,
		tokenSignKey: cfg.Server.TokenSignKey,
		tokenIssuer:  cfg.Server.TokenIssuer,
		hashKey:      cfg.App.HashKey,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		streamPoll: defaultStreamPoll,
		logger:     logger,
	}
}
