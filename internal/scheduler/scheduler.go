// Package scheduler drives the engine on a clock: each enabled SCHEDULED rule
// gets a cron entry from its schedule_cron, and an optional sweep interval
// re-evaluates every runnable rule so REORDER_LEVEL rules fire without their
// own schedule.
package scheduler

import (
	"context"
	"log"
	"sync"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron     *cron.Cron
	execSvc  service.ExecutionService
	ruleRepo repository.RuleRepository

	mu      sync.Mutex
	entries map[uuid.UUID]cron.EntryID
	sweepID cron.EntryID
}

func New(execSvc service.ExecutionService, ruleRepo repository.RuleRepository) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		execSvc:  execSvc,
		ruleRepo: ruleRepo,
		entries:  make(map[uuid.UUID]cron.EntryID),
	}
}

// Start registers the rule schedules plus the sweep (empty spec disables it)
// and launches the cron loop.
func (s *Scheduler) Start(sweepSpec string) {
	if sweepSpec != "" {
		id, err := s.cron.AddFunc(sweepSpec, s.runSweep)
		if err != nil {
			log.Printf("scheduler: invalid sweep spec %q: %v", sweepSpec, err)
		} else {
			s.sweepID = id
		}
	}
	s.Reload()
	s.cron.Start()
}

// Stop halts the cron loop and waits for in-flight jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Reload re-syncs cron entries with the current set of enabled SCHEDULED
// rules. Called at startup and after every rule mutation.
func (s *Scheduler) Reload() {
	rules, err := s.ruleRepo.ListScheduled(context.Background())
	if err != nil {
		log.Printf("scheduler: failed to load scheduled rules: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	keep := make(map[uuid.UUID]bool, len(rules))
	for _, rule := range rules {
		keep[rule.ID] = true
		// Replace unconditionally so cron spec edits take effect.
		if entryID, ok := s.entries[rule.ID]; ok {
			s.cron.Remove(entryID)
			delete(s.entries, rule.ID)
		}
		ruleID := rule.ID
		entryID, err := s.cron.AddFunc(rule.ScheduleCron, func() { s.runRule(ruleID) })
		if err != nil {
			// Validation rejects bad cron specs at save time; this guards data
			// written before that check existed.
			log.Printf("scheduler: rule %s has invalid cron %q: %v", rule.ID, rule.ScheduleCron, err)
			continue
		}
		s.entries[rule.ID] = entryID
	}

	for id, entryID := range s.entries {
		if !keep[id] {
			s.cron.Remove(entryID)
			delete(s.entries, id)
		}
	}
}

func (s *Scheduler) runRule(ruleID uuid.UUID) {
	actor := service.Actor{TriggeredBy: model.TriggeredBySchedule}
	if _, err := s.execSvc.Execute(context.Background(), actor, &ruleID, false); err != nil {
		log.Printf("scheduler: rule %s execution: %v", ruleID, err)
	}
}

func (s *Scheduler) runSweep() {
	actor := service.Actor{TriggeredBy: model.TriggeredBySchedule}
	if _, err := s.execSvc.Execute(context.Background(), actor, nil, false); err != nil {
		log.Printf("scheduler: sweep execution: %v", err)
	}
}
