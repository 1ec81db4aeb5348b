package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// ClassPolicyChunk is the Weaviate class holding embedded policy chunks.
const ClassPolicyChunk = "PolicyChunk"

// SchemaClient defines the interface for Weaviate schema operations
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// EnsureSchema checks if the required classes exist and creates them if not
func EnsureSchema(ctx context.Context, client SchemaClient) error {
	exists, err := client.ClassExists(ctx, ClassPolicyChunk)
	if err != nil {
		return err
	}

	properties := []*models.Property{
		{
			Name:     "text",
			DataType: []string{"text"},
		},
		{
			Name:     "document",
			DataType: []string{"string"}, // file name (exact match)
		},
		{
			Name:     "sequence",
			DataType: []string{"int"},
		},
		{
			Name:     "vectorId",
			DataType: []string{"int"},
		},
	}

	if !exists {
		class := &models.Class{
			Class:       ClassPolicyChunk,
			Description: "A chunk of a visa policy document",
			Vectorizer:  "none",
			Properties:  properties,
		}
		return client.CreateClass(ctx, class)
	}

	// Class exists, check for missing properties
	class, err := client.GetClass(ctx, ClassPolicyChunk)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range properties {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, ClassPolicyChunk, p); err != nil {
				return err
			}
		}
	}

	return nil
}
