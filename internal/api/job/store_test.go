// internal/api/job/store_test.go
package job

import (
	"errors"
	"testing"

	"github.com/vantagelabs/vantage/internal/core"
)

func TestStore_CreateAndGet(t *testing.T) {
	s := NewStore(10)

	created := s.Create("pipeline_run")
	if created.ID == "" {
		t.Fatal("expected job ID")
	}
	if created.Status != StatusPending {
		t.Errorf("status = %s, want pending", created.Status)
	}

	got, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != created.ID || got.Type != "pipeline_run" {
		t.Errorf("got %+v", got)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := NewStore(10)
	if _, err := s.Get("nope"); !errors.Is(err, core.ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestStore_Update(t *testing.T) {
	s := NewStore(10)
	job := s.Create("pipeline_run")

	err := s.Update(job.ID, func(j *Job) {
		j.Status = StatusComplete
		j.Result = map[string]int{"tickers": 3}
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := s.Get(job.ID)
	if got.Status != StatusComplete {
		t.Errorf("status = %s, want complete", got.Status)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Error("UpdatedAt should advance")
	}
}

func TestStore_UpdateMissing(t *testing.T) {
	s := NewStore(10)
	if err := s.Update("nope", func(j *Job) {}); !errors.Is(err, core.ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestStore_EvictsOldest(t *testing.T) {
	s := NewStore(2)
	first := s.Create("pipeline_run")
	s.Create("pipeline_run")
	s.Create("pipeline_run")

	if _, err := s.Get(first.ID); !errors.Is(err, core.ErrNoData) {
		t.Error("oldest job should be evicted")
	}
	if len(s.List()) != 2 {
		t.Errorf("len = %d, want 2", len(s.List()))
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore(10)
	job := s.Create("pipeline_run")

	got, _ := s.Get(job.ID)
	got.Status = StatusFailed

	again, _ := s.Get(job.ID)
	if again.Status != StatusPending {
		t.Error("mutating a returned job should not affect the store")
	}
}
