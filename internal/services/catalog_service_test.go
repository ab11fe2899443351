package services_test

import (
	"errors"
	"testing"

	"watchtrade_backend/internal/models"
	"watchtrade_backend/internal/repositories"
	"watchtrade_backend/internal/services"
)

type fakeModelCatalogRepo struct {
	repositories.CatalogRepository
	modelsByID map[string]models.WatchModel
	updated    *models.WatchModel
	createdRef *models.Reference
}

func (f *fakeModelCatalogRepo) GetModelByID(id string) (*models.WatchModel, error) {
	if m, ok := f.modelsByID[id]; ok {
		return &m, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeModelCatalogRepo) UpdateModel(executor repositories.SQLExecutor, model *models.WatchModel) error {
	f.updated = model
	return nil
}

func (f *fakeModelCatalogRepo) CreateReference(executor repositories.SQLExecutor, ref *models.Reference) error {
	f.createdRef = ref
	return nil
}

func TestUpdateModel(t *testing.T) {
	repo := &fakeModelCatalogRepo{modelsByID: map[string]models.WatchModel{
		"m1": {ID: "m1", BrandID: "b1", Name: "Daytona"},
	}}
	svc := services.NewCatalogService(repo, nil)

	t.Run("investor is rejected", func(t *testing.T) {
		investor := services.Actor{UserID: 2, Role: models.RoleInvestor}
		if _, err := svc.UpdateModel(investor, "m1", "Submariner"); !errors.Is(err, services.ErrInsufficientPermission) {
			t.Errorf("error = %v, want ErrInsufficientPermission", err)
		}
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		if _, err := svc.UpdateModel(operator(), "m1", "  "); !errors.Is(err, services.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("unknown model", func(t *testing.T) {
		if _, err := svc.UpdateModel(operator(), "ghost", "Submariner"); !errors.Is(err, services.ErrModelNotFound) {
			t.Errorf("error = %v, want ErrModelNotFound", err)
		}
	})

	t.Run("rename succeeds", func(t *testing.T) {
		model, err := svc.UpdateModel(operator(), "m1", "Submariner")
		if err != nil {
			t.Fatalf("UpdateModel: %v", err)
		}
		if model.Name != "Submariner" {
			t.Errorf("name = %q, want Submariner", model.Name)
		}
		if repo.updated == nil || repo.updated.Name != "Submariner" {
			t.Error("repository did not receive the renamed model")
		}
	})
}

func TestCreateReferenceNormalizesRetailPrice(t *testing.T) {
	repo := &fakeModelCatalogRepo{modelsByID: map[string]models.WatchModel{
		"m1": {ID: "m1", BrandID: "b1", Name: "Daytona"},
	}}
	svc := services.NewCatalogService(repo, nil)

	t.Run("garbage price is rejected", func(t *testing.T) {
		_, err := svc.CreateReference(operator(), services.CreateReferenceRequest{
			ModelID:     "m1",
			Code:        "116500LN",
			RetailPrice: strPtr("call us"),
		})
		if !errors.Is(err, services.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("valid price is stored in display format", func(t *testing.T) {
		ref, err := svc.CreateReference(operator(), services.CreateReferenceRequest{
			ModelID:     "m1",
			Code:        "116500LN",
			RetailPrice: strPtr("1.234,56"),
		})
		if err != nil {
			t.Fatalf("CreateReference: %v", err)
		}
		if ref.RetailPrice == nil || *ref.RetailPrice != "€1.234,56" {
			t.Errorf("retail price = %v, want €1.234,56", ref.RetailPrice)
		}
	})

	t.Run("blank price maps to nil", func(t *testing.T) {
		ref, err := svc.CreateReference(operator(), services.CreateReferenceRequest{
			ModelID:     "m1",
			Code:        "126610LN",
			RetailPrice: strPtr("   "),
		})
		if err != nil {
			t.Fatalf("CreateReference: %v", err)
		}
		if ref.RetailPrice != nil {
			t.Errorf("retail price = %v, want nil", *ref.RetailPrice)
		}
	})
}
