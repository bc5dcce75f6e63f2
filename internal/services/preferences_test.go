package services

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"
)

func TestPreferencesUpsertValidation(t *testing.T) {
	svc := NewPreferencesService(nil, testLogger(t), &fakePrefsRepo{}, nil)
	ctx := context.Background()

	cases := []PreferencesInput{
		{Topics: []string{"technology"}, PreferredLength: "medium"},
		{UserID: uuid.New(), PreferredLength: "medium"},
		{UserID: uuid.New(), Topics: []string{"a", "b", "c", "d", "e", "f"}, PreferredLength: "medium"},
		{UserID: uuid.New(), Topics: []string{"technology"}, PreferredLength: "marathon"},
	}
	for i, input := range cases {
		if _, err := svc.Upsert(ctx, input); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, input)
		}
	}
}

func TestPreferencesUpsertDefaults(t *testing.T) {
	prefsRepo := &fakePrefsRepo{}
	svc := NewPreferencesService(nil, testLogger(t), prefsRepo, nil)

	userID := uuid.New()
	saved, err := svc.Upsert(context.Background(), PreferencesInput{
		UserID:          userID,
		Topics:          []string{"technology", "startups"},
		PreferredLength: "long",
		StyleInterview:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved.ExpertiseLevel != "intermediate" || saved.TargetAudience != "general" {
		t.Fatalf("empty enums should default: %+v", saved)
	}
	if got := decodeStringSlice(saved.Topics); !reflect.DeepEqual(got, []string{"technology", "startups"}) {
		t.Fatalf("topics = %v", got)
	}

	loaded, err := svc.GetByUserID(context.Background(), userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded == nil || loaded.UserID != userID {
		t.Fatalf("stored preferences not found")
	}
}
