package vector

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// WeaviateClientAdapter bridges the concrete Weaviate client to the
// SchemaClient interface so EnsureSchema stays testable without a server.
type WeaviateClientAdapter struct {
	client *weaviate.Client
}

func NewWeaviateClientAdapter(client *weaviate.Client) *WeaviateClientAdapter {
	return &WeaviateClientAdapter{client: client}
}

func (a *WeaviateClientAdapter) ClassExists(ctx context.Context, className string) (bool, error) {
	exists, err := a.client.Schema().ClassExistenceChecker().WithClassName(className).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("check class %s: %w", className, err)
	}
	return exists, nil
}

func (a *WeaviateClientAdapter) CreateClass(ctx context.Context, class *models.Class) error {
	if err := a.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("create class %s: %w", class.Class, err)
	}
	return nil
}

func (a *WeaviateClientAdapter) GetClass(ctx context.Context, className string) (*models.Class, error) {
	class, err := a.client.Schema().ClassGetter().WithClassName(className).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("get class %s: %w", className, err)
	}
	return class, nil
}

func (a *WeaviateClientAdapter) AddProperty(ctx context.Context, className string, property *models.Property) error {
	if err := a.client.Schema().PropertyCreator().WithClassName(className).WithProperty(property).Do(ctx); err != nil {
		return fmt.Errorf("add property %s.%s: %w", className, property.Name, err)
	}
	return nil
}
