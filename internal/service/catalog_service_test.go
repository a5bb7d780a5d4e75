package service

import (
	"context"
	"testing"

	"github.com/hairult/hairstyle-service/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestCatalogCreateAndGet(t *testing.T) {
	db := newMemoryDB()
	svc := NewCatalogService(memoryHairstyleRepo{db: db})

	created, err := svc.Create(context.Background(), HairstyleInput{
		Name:        "  Hush Cut ",
		Description: strPtr("Feathery layers framing the face"),
		HairLength:  "Shoulder",
		CutType:     strPtr("Layered"),
		BangsType:   strPtr("SeeThrough"),
		PermType:    strPtr(" "),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Hush Cut" || created.HairLength != domain.HairLengthShoulder {
		t.Fatalf("unexpected entry: %+v", created)
	}
	if created.CutType == nil || *created.CutType != domain.CutTypeLayered {
		t.Fatalf("cut type not set: %+v", created.CutType)
	}
	if created.PermType != nil {
		t.Fatal("blank optional attribute should be nil")
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Hush Cut" {
		t.Fatalf("got %q", got.Name)
	}

	list, err := svc.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %d, %v", len(list), err)
	}
}

func TestCatalogCreateValidation(t *testing.T) {
	db := newMemoryDB()
	svc := NewCatalogService(memoryHairstyleRepo{db: db})

	_, err := svc.Create(context.Background(), HairstyleInput{Name: "", HairLength: "Shoulder"})
	requireCode(t, err, "VALIDATION_FAILED")

	_, err = svc.Create(context.Background(), HairstyleInput{Name: "No Length"})
	de := requireCode(t, err, "VALIDATION_FAILED")
	if de.Details["hair_length"] != "required" {
		t.Fatalf("expected hair_length required, got %v", de.Details)
	}

	_, err = svc.Create(context.Background(), HairstyleInput{Name: "Bad", HairLength: "Knee", CurlPattern: strPtr("Zigzag")})
	de = requireCode(t, err, "VALIDATION_FAILED")
	if de.Details["hair_length"] != "Knee" || de.Details["curl_pattern"] != "Zigzag" {
		t.Fatalf("expected both invalid attributes reported, got %v", de.Details)
	}
}

func TestCatalogDuplicateNameConflicts(t *testing.T) {
	db := newMemoryDB()
	svc := NewCatalogService(memoryHairstyleRepo{db: db})
	db.addHairstyle("Pixie")

	_, err := svc.Create(context.Background(), HairstyleInput{Name: "Pixie", HairLength: "AboveEar"})
	requireCode(t, err, "CONFLICT")
}

func TestCatalogGetUnknown(t *testing.T) {
	svc := NewCatalogService(memoryHairstyleRepo{db: newMemoryDB()})
	for _, id := range []string{"pixie", "5b0e6c2a-1f7d-4a4b-8f55-2d6b1c9e0a77"} {
		_, err := svc.Get(context.Background(), id)
		requireCode(t, err, "NOT_FOUND")
	}
}
