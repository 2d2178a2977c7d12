package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"RoboAdvisor/internal/model"
)

func implementations(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "robo.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sq,
	}
}

var t0 = time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC)

func sampleRecord(id, owner string, created time.Time) *model.GoalRecord {
	return &model.GoalRecord{
		GoalID:  id,
		OwnerID: owner,
		Input: model.GoalInput{
			Corpus:       100000,
			MonthlySIP:   10000,
			HorizonYears: 10,
			RiskCategory: model.MediumRisk,
		},
		Projection: model.ProjectionResult{
			Conservative:         2066543.21,
			Expected:             2012345.67,
			BestCase:             2245678.9,
			BaseReturn:           9.0,
			AdjustedReturn:       8.0,
			RecentReturn:         14.8,
			RecentReturnSource:   model.RecentReturnDefault,
			Confidence:           model.ConfidenceMedium,
			ConfidencePercentage: 50,
			Volatility:           7.5,
			MeanReversionApplied: true,
			Category:             model.MediumRisk,
		},
		Status:    model.StatusSaved,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			rec := sampleRecord("GOAL_20251201_ABCDE", "u1", t0)
			id, err := s.Save(ctx, rec)
			if err != nil || id != rec.GoalID {
				t.Fatalf("Save = %q, %v", id, err)
			}
			got, err := s.Get(ctx, id)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Input != rec.Input {
				t.Errorf("input = %+v, want %+v", got.Input, rec.Input)
			}
			if got.Projection != rec.Projection {
				t.Errorf("projection = %+v, want %+v", got.Projection, rec.Projection)
			}
			if got.Status != model.StatusSaved || !got.CreatedAt.Equal(t0) {
				t.Errorf("status/created = %s/%v", got.Status, got.CreatedAt)
			}
			if got.EmailSentAt != nil || got.RevisitedAt != nil {
				t.Error("event timestamps should be unset")
			}
			if _, err := s.Save(ctx, rec); err == nil {
				t.Error("expected duplicate goal id to fail")
			}
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "GOAL_missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get: expected ErrNotFound, got %v", err)
			}
			if err := s.MarkEmailSent(ctx, "GOAL_missing", t0); !errors.Is(err, ErrNotFound) {
				t.Errorf("MarkEmailSent: expected ErrNotFound, got %v", err)
			}
			if err := s.MarkRevisited(ctx, "GOAL_missing", t0); !errors.Is(err, ErrNotFound) {
				t.Errorf("MarkRevisited: expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStore_ListByOwnerNewestFirst(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			s.Save(ctx, sampleRecord("G1", "u1", t0))
			s.Save(ctx, sampleRecord("G2", "u1", t0.Add(2*time.Hour)))
			s.Save(ctx, sampleRecord("G3", "u1", t0.Add(time.Hour)))
			s.Save(ctx, sampleRecord("G4", "u2", t0.Add(3*time.Hour)))

			list, err := s.ListByOwner(ctx, "u1")
			if err != nil {
				t.Fatalf("ListByOwner: %v", err)
			}
			want := []string{"G2", "G3", "G1"}
			if len(list) != len(want) {
				t.Fatalf("expected %d goals, got %d", len(want), len(list))
			}
			for i, id := range want {
				if list[i].GoalID != id {
					t.Errorf("list[%d] = %s, want %s", i, list[i].GoalID, id)
				}
			}

			none, err := s.ListByOwner(ctx, "nobody")
			if err != nil || len(none) != 0 {
				t.Errorf("unknown owner: %d goals, %v", len(none), err)
			}
		})
	}
}

func TestStore_StatusTransitions(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			s.Save(ctx, sampleRecord("A", "", t0))
			s.Save(ctx, sampleRecord("B", "", t0))

			// saved -> email_sent -> revisited
			emailAt := t0.Add(time.Minute)
			if err := s.MarkEmailSent(ctx, "A", emailAt); err != nil {
				t.Fatalf("MarkEmailSent: %v", err)
			}
			a, _ := s.Get(ctx, "A")
			if a.Status != model.StatusEmailSent || a.EmailSentAt == nil || !a.EmailSentAt.Equal(emailAt) {
				t.Errorf("after email: %s %v", a.Status, a.EmailSentAt)
			}
			revisitAt := t0.Add(time.Hour)
			s.MarkRevisited(ctx, "A", revisitAt)
			a, _ = s.Get(ctx, "A")
			if a.Status != model.StatusRevisited || !a.UpdatedAt.Equal(revisitAt) {
				t.Errorf("after revisit: %s updated %v", a.Status, a.UpdatedAt)
			}

			// a later email does not demote revisited but is stamped
			resendAt := t0.Add(2 * time.Hour)
			s.MarkEmailSent(ctx, "A", resendAt)
			a, _ = s.Get(ctx, "A")
			if a.Status != model.StatusRevisited {
				t.Errorf("status demoted to %s", a.Status)
			}
			if !a.EmailSentAt.Equal(resendAt) || !a.RevisitedAt.Equal(revisitAt) {
				t.Errorf("stamps = %v / %v", a.EmailSentAt, a.RevisitedAt)
			}

			// saved -> revisited directly
			s.MarkRevisited(ctx, "B", revisitAt)
			b, _ := s.Get(ctx, "B")
			if b.Status != model.StatusRevisited || b.EmailSentAt != nil {
				t.Errorf("direct revisit: %s email %v", b.Status, b.EmailSentAt)
			}
		})
	}
}

func TestStore_Analytics(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			empty, err := s.Analytics(ctx)
			if err != nil || empty.TotalGoals != 0 || empty.AvgCorpus != 0 {
				t.Fatalf("empty analytics = %+v, %v", empty, err)
			}

			r1 := sampleRecord("A", "u1", t0)
			r2 := sampleRecord("B", "u1", t0)
			r2.Input.Corpus = 300000
			r2.Input.HorizonYears = 20
			r2.Input.RiskCategory = model.HighRisk
			r2.Projection.Confidence = model.ConfidenceLow
			s.Save(ctx, r1)
			s.Save(ctx, r2)
			s.MarkEmailSent(ctx, "B", t0.Add(time.Minute))

			a, err := s.Analytics(ctx)
			if err != nil {
				t.Fatalf("Analytics: %v", err)
			}
			if a.TotalGoals != 2 {
				t.Errorf("total = %d", a.TotalGoals)
			}
			if a.ByStatus[model.StatusSaved] != 1 || a.ByStatus[model.StatusEmailSent] != 1 {
				t.Errorf("by status = %v", a.ByStatus)
			}
			if a.ByConfidence[model.ConfidenceMedium] != 1 || a.ByConfidence[model.ConfidenceLow] != 1 {
				t.Errorf("by confidence = %v", a.ByConfidence)
			}
			if a.ByRiskCategory[model.HighRisk] != 1 || a.ByRiskCategory[model.MediumRisk] != 1 {
				t.Errorf("by risk = %v", a.ByRiskCategory)
			}
			if a.AvgCorpus != 200000 || a.AvgHorizon != 15 || a.AvgSIP != 10000 {
				t.Errorf("averages = %v %v %v", a.AvgCorpus, a.AvgHorizon, a.AvgSIP)
			}
		})
	}
}

func TestStore_RepeatedEmailOnlyRestamps(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			s.Save(ctx, sampleRecord("E", "u1", t0))

			first := t0.Add(time.Minute)
			if err := s.MarkEmailSent(ctx, "E", first); err != nil {
				t.Fatalf("MarkEmailSent: %v", err)
			}
			rec, _ := s.Get(ctx, "E")
			if rec.Status != model.StatusEmailSent || rec.EmailSentAt == nil || !rec.EmailSentAt.Equal(first) {
				t.Errorf("after first email: %s %v", rec.Status, rec.EmailSentAt)
			}
			if rec.RevisitedAt != nil {
				t.Errorf("revisited_at should stay unset, got %v", rec.RevisitedAt)
			}

			second := t0.Add(time.Hour)
			if err := s.MarkEmailSent(ctx, "E", second); err != nil {
				t.Fatalf("MarkEmailSent again: %v", err)
			}
			rec, _ = s.Get(ctx, "E")
			if rec.Status != model.StatusEmailSent {
				t.Errorf("status changed to %s", rec.Status)
			}
			if !rec.EmailSentAt.Equal(second) || !rec.UpdatedAt.Equal(second) {
				t.Errorf("not re-stamped: email %v updated %v", rec.EmailSentAt, rec.UpdatedAt)
			}
			if rec.RevisitedAt != nil {
				t.Errorf("revisited_at should stay unset, got %v", rec.RevisitedAt)
			}
			if !rec.CreatedAt.Equal(t0) {
				t.Errorf("created_at changed to %v", rec.CreatedAt)
			}
		})
	}
}

func sampleRegistration(email, city, country string) *model.Registration {
	score := 27
	return &model.Registration{
		Name:         "Asha",
		Email:        email,
		City:         city,
		Country:      country,
		Consent:      true,
		RiskScore:    &score,
		RiskCategory: model.MediumRisk,
	}
}

func TestStore_RegistrationLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			id1, err := s.SaveRegistration(ctx, sampleRegistration("  asha@example.com ", "Pune", "India"), t0)
			if err != nil {
				t.Fatalf("SaveRegistration: %v", err)
			}
			id2, err := s.SaveRegistration(ctx, sampleRegistration("ravi@example.com", "Pune", "India"), t0.Add(time.Minute))
			if err != nil {
				t.Fatalf("SaveRegistration: %v", err)
			}
			if id1 == id2 {
				t.Fatalf("ids collide: %d", id1)
			}
			if err := s.MarkRecommendationsViewed(ctx, id1); err != nil {
				t.Fatalf("MarkRecommendationsViewed: %v", err)
			}
			if err := s.MarkRecommendationsViewed(ctx, 9999); !errors.Is(err, ErrNotFound) {
				t.Errorf("missing registration: expected ErrNotFound, got %v", err)
			}

			regs, err := s.LatestRegistrations(ctx, 0)
			if err != nil || len(regs) != 2 {
				t.Fatalf("LatestRegistrations = %d, %v", len(regs), err)
			}
			if regs[0].ID != id2 || regs[1].ID != id1 {
				t.Errorf("expected newest first, got ids %d, %d", regs[0].ID, regs[1].ID)
			}
			first := regs[1]
			if first.Email != "asha@example.com" {
				t.Errorf("email not trimmed: %q", first.Email)
			}
			if !first.Consent || !first.ConsentAt.Equal(t0) || !first.CreatedAt.Equal(t0) {
				t.Errorf("consent fields = %v %v %v", first.Consent, first.ConsentAt, first.CreatedAt)
			}
			if !first.QuestionnaireCompleted || !first.RecommendationsViewed || regs[0].RecommendationsViewed {
				t.Errorf("flags = %+v / %+v", first, regs[0])
			}
			if first.RiskScore == nil || *first.RiskScore != 27 || first.RiskCategory != model.MediumRisk {
				t.Errorf("risk fields = %v %s", first.RiskScore, first.RiskCategory)
			}

			if regs, _ := s.LatestRegistrations(ctx, 1); len(regs) != 1 || regs[0].ID != id2 {
				t.Errorf("limit 1 = %+v", regs)
			}
		})
	}
}

func TestStore_SaveRegistrationRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			blank := sampleRegistration("   ", "", "")
			if _, err := s.SaveRegistration(ctx, blank, t0); err == nil {
				t.Error("expected error for blank email")
			}
			noConsent := sampleRegistration("a@example.com", "", "")
			noConsent.Consent = false
			if _, err := s.SaveRegistration(ctx, noConsent, t0); err == nil {
				t.Error("expected error without consent")
			}
			if regs, _ := s.LatestRegistrations(ctx, 10); len(regs) != 0 {
				t.Errorf("invalid registrations were stored: %d", len(regs))
			}
		})
	}
}

func TestStore_Overview(t *testing.T) {
	ctx := context.Background()
	for name, s := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			empty, err := s.Overview(ctx)
			if err != nil || empty.TotalRegistered != 0 || empty.Funnel.ViewedOfRegistered != 0 {
				t.Fatalf("empty overview = %+v, %v", empty, err)
			}

			regs := []*model.Registration{
				sampleRegistration("a@example.com", "Pune", "India"),
				sampleRegistration("a@example.com", "Pune", "India"),
				sampleRegistration("b@example.com", "Mumbai", "India"),
				sampleRegistration("c@example.com", "", "Singapore"),
			}
			var ids []int64
			for i, r := range regs {
				id, err := s.SaveRegistration(ctx, r, t0.Add(time.Duration(i)*time.Minute))
				if err != nil {
					t.Fatalf("SaveRegistration: %v", err)
				}
				ids = append(ids, id)
			}
			s.MarkRecommendationsViewed(ctx, ids[0])

			o, err := s.Overview(ctx)
			if err != nil {
				t.Fatalf("Overview: %v", err)
			}
			if o.TotalRegistered != 3 || o.TotalQuestionnaireCompleted != 4 || o.TotalRecommendationsViewed != 1 {
				t.Errorf("totals = %d %d %d", o.TotalRegistered, o.TotalQuestionnaireCompleted, o.TotalRecommendationsViewed)
			}
			if o.ByCountry["India"] != 3 || o.ByCountry["Singapore"] != 1 {
				t.Errorf("by country = %v", o.ByCountry)
			}
			if len(o.TopCities) != 2 || o.TopCities[0] != (CityCount{"Pune", "India", 2}) || o.TopCities[1].City != "Mumbai" {
				t.Errorf("top cities = %+v", o.TopCities)
			}
			if o.Funnel.RegisteredOfCompleted != 75 || o.Funnel.ViewedOfRegistered != 33.3 {
				t.Errorf("funnel = %+v", o.Funnel)
			}
		})
	}
}
