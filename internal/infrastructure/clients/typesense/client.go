package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/healthmarket/pkg/config"
	"github.com/zatekoja/healthmarket/pkg/retry"
)

const (
	DoctorsCollection = "doctors"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(ctx context.Context, cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	err := retry.Do(ctx, retry.DefaultConfig(), "typesense", func(ctx context.Context) error {
		healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_, err := client.Health(healthCtx, 2*time.Second)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	log.Info().Str("url", cfg.URL).Msg("connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// InitSchema ensures the doctors collection exists
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	for _, col := range collections {
		if col.Name == DoctorsCollection {
			log.Debug().Str("collection", DoctorsCollection).Msg("typesense collection already exists")
			return nil
		}
	}

	_, err = c.client.Collections().Create(ctx, DoctorsSchema())
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Info().Str("collection", DoctorsCollection).Msg("created typesense collection")
	return nil
}

// DoctorsSchema describes the doctor search documents
func DoctorsSchema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: DoctorsCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "doctor_id", Type: "int64"},
			{Name: "name", Type: "string"},
			{Name: "specialty", Type: "string", Facet: pointer.True()},
			{Name: "location", Type: "string", Facet: pointer.True()},
			{Name: "experience", Type: "int32", Optional: pointer.True()},
		},
		DefaultSortingField: pointer.String("doctor_id"),
	}
}

// NewClientFromTypesense wraps an existing typesense client
func NewClientFromTypesense(client *typesense.Client) *Client {
	return &Client{client: client}
}
