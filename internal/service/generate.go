// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"occasio/internal/genai"
	"occasio/internal/model"
	"occasio/internal/store"
)

// Workflow states for AI content generation.
type GenerationState string

const (
	StateIdle            GenerationState = "idle"
	StateGeneratingPlan  GenerationState = "generating_plan"
	StateGeneratingGifts GenerationState = "generating_gifts"
	StatePersisting      GenerationState = "persisting"
	StateReady           GenerationState = "ready"
	StateFailed          GenerationState = "failed"
)

// Terminal reports whether the workflow has finished.
func (s GenerationState) Terminal() bool {
	return s == StateReady || s == StateFailed
}

var (
	// ErrGenerationInFlight is returned when generation is started for an
	// event that already has a workflow running.
	ErrGenerationInFlight = errors.New("generation already in progress for this event")

	// ErrAlreadyGenerated is returned when generation is started for an
	// event whose content was already generated and persisted.
	ErrAlreadyGenerated = errors.New("content already generated for this event")
)

// Generator produces text from a system instruction and a user prompt.
// *genai.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, userPrompt string) (string, error)
}

// GenerationStatus is an immutable snapshot of a workflow run. Plan is
// populated as soon as the plan call returns, before the gift call starts.
type GenerationStatus struct {
	State GenerationState
	Plan  string
	Gifts string
	Error string
}

// GenerateService runs the per-event AI content workflow: plan, then gifts,
// then one combined write. A failure at any step persists nothing.
type GenerateService struct {
	events *store.EventStore
	gen    Generator
	notify *EventService
	logger *slog.Logger

	mu   sync.Mutex
	runs map[int64]*GenerationStatus // keyed by event ID
}

// NewGenerateService creates a new GenerateService.
func NewGenerateService(events *store.EventStore, gen Generator, notify *EventService, logger *slog.Logger) *GenerateService {
	return &GenerateService{
		events: events,
		gen:    gen,
		notify: notify,
		logger: logger,
		runs:   make(map[int64]*GenerationStatus),
	}
}

// Status returns the current snapshot for an event's workflow, if any.
func (s *GenerateService) Status(eventID int64) (GenerationStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[eventID]; ok {
		return *run, true
	}
	return GenerationStatus{State: StateIdle}, false
}

// Start begins the workflow for the event, rejecting re-entry while a run is
// in flight and rejecting events whose content is already persisted. The
// workflow itself runs detached from the request context: once started, a
// call runs to completion or failure.
func (s *GenerateService) Start(ctx context.Context, ev model.Event) error {
	if ev.AIReady {
		return ErrAlreadyGenerated
	}

	s.mu.Lock()
	if run, ok := s.runs[ev.ID]; ok && !run.State.Terminal() {
		s.mu.Unlock()
		return ErrGenerationInFlight
	}
	s.runs[ev.ID] = &GenerationStatus{State: StateGeneratingPlan}
	s.mu.Unlock()

	go s.run(context.WithoutCancel(ctx), ev)
	return nil
}

// run executes the fixed sequence: plan call, gift call, combined write.
func (s *GenerateService) run(ctx context.Context, ev model.Event) {
	prompt := genai.BuildEventPrompt(ev)

	plan, err := s.gen.Generate(ctx, genai.PlannerInstruction, prompt)
	if err != nil {
		s.fail(ev, err)
		return
	}
	if strings.TrimSpace(plan) == "" {
		s.fail(ev, errors.New("the model returned an empty plan"))
		return
	}

	// Make the plan visible before the gift call starts.
	s.update(ev.ID, func(run *GenerationStatus) {
		run.Plan = plan
		run.State = StateGeneratingGifts
	})

	gifts, err := s.gen.Generate(ctx, genai.GiftAdvisorInstruction, prompt)
	if err != nil {
		s.fail(ev, err)
		return
	}
	if strings.TrimSpace(gifts) == "" {
		s.fail(ev, errors.New("the model returned no gift suggestions"))
		return
	}

	s.update(ev.ID, func(run *GenerationStatus) {
		run.Gifts = gifts
		run.State = StatePersisting
	})

	// Plan, gifts, and the ready flag land in one write, so a partial
	// result is never observable in the store.
	if err := s.events.AttachAIContent(ctx, ev.ID, plan, gifts); err != nil {
		s.fail(ev, err)
		return
	}

	s.update(ev.ID, func(run *GenerationStatus) {
		run.State = StateReady
	})
	s.logger.Info("generation complete", "category", model.ActivityCategoryAI, "event", ev.PublicID)
	s.notify.Notify(ctx, ev.UserID)
}

// fail records a terminal failure. The stored event is left untouched.
func (s *GenerateService) fail(ev model.Event, err error) {
	s.logger.Warn("generation failed", "category", model.ActivityCategoryAI, "event", ev.PublicID, "error", err)
	s.update(ev.ID, func(run *GenerationStatus) {
		run.State = StateFailed
		run.Error = err.Error()
	})
}

func (s *GenerateService) update(eventID int64, fn func(*GenerationStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.runs[eventID]; ok {
		fn(run)
	}
}
