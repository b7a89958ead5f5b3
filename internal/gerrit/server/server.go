// Package server reads the review server's version and configuration.
package server

import (
	"context"
	"net/http"

	"github.com/thomas-vilte/matereview/internal/models"
)

type Syncer interface {
	Sync(ctx context.Context, method, path string, body, out interface{}) error
}

type Service struct {
	client Syncer
}

func NewService(client Syncer) *Service {
	return &Service{client: client}
}

// Version returns the server version string, e.g. "3.9.1".
func (s *Service) Version(ctx context.Context) (string, error) {
	var version string
	if err := s.client.Sync(ctx, http.MethodGet, "/config/server/version", nil, &version); err != nil {
		return "", err
	}
	return version, nil
}

func (s *Service) Info(ctx context.Context) (*models.ServerInfo, error) {
	var info models.ServerInfo
	if err := s.client.Sync(ctx, http.MethodGet, "/config/server/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
