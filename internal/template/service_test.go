package template

import (
	"context"
	"io"
	"testing"

	"github.com/craftlane/personalizer-backend/pkg/cache"
	"github.com/craftlane/personalizer-backend/pkg/db"
	"github.com/craftlane/personalizer-backend/pkg/errors"
	"github.com/craftlane/personalizer-backend/pkg/logger"
	"github.com/craftlane/personalizer-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTemplateService(t *testing.T) (Service, Repository) {
	t.Helper()

	conn := setupTemplateTestDB(t)
	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{
		DB:     db.FromGorm(conn),
		Repo:   repo,
		Cache:  cache.NewMemory(cache.Options{}),
		Logger: logger.New(logger.Options{Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc, repo
}

func TestServiceSaveCreatesThenUpdates(t *testing.T) {
	svc, repo := newTemplateService(t)
	ctx := context.Background()

	payload := []byte(`{"viewName":"Front","elements":[]}`)
	created, err := svc.Save(ctx, SaveInput{
		ProductID:    "gid://shopify/Product/1001",
		ProductTitle: "Coffee Mug",
		TemplateName: "Mug Front",
		Template:     payload,
	})
	require.NoError(t, err)
	assert.True(t, created.Created)

	link, err := repo.FindActiveByProduct(ctx, "1001")
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "Coffee Mug", link.ProductTitle)

	// A second save for the same product reuses the existing rows.
	updated, err := svc.Save(ctx, SaveInput{
		ProductID:    "1001",
		TemplateName: "Mug Front v2",
		Template:     []byte(`{"viewName":"Front v2","elements":[]}`),
	})
	require.NoError(t, err)
	assert.False(t, updated.Created)
	assert.Equal(t, created.OptionSetID, updated.OptionSetID)
	assert.Equal(t, created.LinkID, updated.LinkID)

	loaded, err := svc.Load(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, "Front v2", loaded.Template.ViewName)
	assert.Equal(t, "Mug Front v2", loaded.Name)
}

func TestServiceSaveRejectsInvalidInput(t *testing.T) {
	svc, _ := newTemplateService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, SaveInput{Template: []byte(`{}`)})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())

	_, err = svc.Save(ctx, SaveInput{ProductID: "1001", Template: []byte(`{broken`)})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

func TestServiceLoadMissingOrInactive(t *testing.T) {
	svc, _ := newTemplateService(t)
	ctx := context.Background()

	_, err := svc.Load(ctx, "404404")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())

	_, err = svc.Save(ctx, SaveInput{ProductID: "2002", Template: []byte(`{"viewName":"Front"}`)})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, "2002"))

	_, err = svc.Load(ctx, "2002")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}

func TestServiceDeactivateMissing(t *testing.T) {
	svc, _ := newTemplateService(t)

	err := svc.Deactivate(context.Background(), "555")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}

func TestServiceListCachesFirstPage(t *testing.T) {
	svc, _ := newTemplateService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, SaveInput{ProductID: "1", TemplateName: "A", Template: []byte(`{"viewName":"A"}`)})
	require.NoError(t, err)
	_, err = svc.Save(ctx, SaveInput{ProductID: "2", TemplateName: "B", Template: []byte(`{"viewName":"B"}`)})
	require.NoError(t, err)

	first, next, err := svc.List(ctx, pagination.Params{})
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Len(t, first, 2)

	again, _, err := svc.List(ctx, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, first, again)
}
