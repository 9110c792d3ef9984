package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/healthmarket/internal/domain/entities"
	"github.com/zatekoja/healthmarket/internal/domain/repositories"
	tsclient "github.com/zatekoja/healthmarket/internal/infrastructure/clients/typesense"
)

const defaultPerPage = 50

// TypesenseAdapter implements doctor search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.DoctorSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	if _, err := a.client.Client().Collection(tsclient.DoctorsCollection).Retrieve(ctx); err == nil {
		return nil
	}

	if _, err := a.client.Client().Collections().Create(ctx, tsclient.DoctorsSchema()); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}
	return nil
}

// Index upserts a doctor document
func (a *TypesenseAdapter) Index(ctx context.Context, doctor *entities.Doctor) error {
	_, err := a.client.Client().Collection(tsclient.DoctorsCollection).Documents().Upsert(ctx, doctorDocument(doctor))
	if err != nil {
		return fmt.Errorf("failed to index doctor: %w", err)
	}
	return nil
}

// Delete removes a doctor from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id int64) error {
	_, err := a.client.Client().Collection(tsclient.DoctorsCollection).Document(strconv.FormatInt(id, 10)).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete doctor from index: %w", err)
	}
	return nil
}

// Search returns matching doctor ids in relevance order
func (a *TypesenseAdapter) Search(ctx context.Context, filter repositories.DoctorFilter) ([]int64, error) {
	perPage := filter.Limit
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	q := strings.TrimSpace(filter.Query)
	if q == "" {
		q = "*"
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String("name,specialty"),
		Page:    pointer.Int(filter.Offset/perPage + 1),
		PerPage: pointer.Int(perPage),
	}
	if by := filterBy(filter); by != "" {
		params.FilterBy = pointer.String(by)
	}

	result, err := a.client.Client().Collection(tsclient.DoctorsCollection).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search doctors: %w", err)
	}

	ids := []int64{}
	if result.Hits == nil {
		return ids, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document
		switch v := doc["doctor_id"].(type) {
		case float64:
			ids = append(ids, int64(v))
		case string:
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func doctorDocument(d *entities.Doctor) map[string]interface{} {
	return map[string]interface{}{
		"id":         strconv.FormatInt(d.ID, 10),
		"doctor_id":  d.ID,
		"name":       d.Name,
		"specialty":  d.Specialty,
		"location":   d.Location,
		"experience": d.Experience,
	}
}

func filterBy(filter repositories.DoctorFilter) string {
	var parts []string
	if s := strings.TrimSpace(filter.Specialty); s != "" {
		parts = append(parts, fmt.Sprintf("specialty:=`%s`", strings.ReplaceAll(s, "`", "")))
	}
	if l := strings.TrimSpace(filter.Location); l != "" {
		parts = append(parts, fmt.Sprintf("location:=`%s`", strings.ReplaceAll(l, "`", "")))
	}
	return strings.Join(parts, " && ")
}
