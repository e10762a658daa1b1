package services

import (
	"context"
	"strings"
	"time"

	"github.com/itish2003/lawgic/logger"
	"github.com/itish2003/lawgic/models"
)

// Task selects which chain of prompts and templates the dispatcher uses.
type Task string

const (
	TaskAnalysis Task = "analysis"
	TaskResearch Task = "research"
)

// StageFunc attempts one analysis strategy. ok=false passes control to the
// next stage.
type StageFunc func(ctx context.Context, task Task, text, lang string) (result models.Result, ok bool)

// Stage is a named entry in the fallback chain.
type Stage struct {
	Name string
	Run  StageFunc
}

// Dispatcher walks an ordered list of stages and returns the first result.
// It never returns an error.
type Dispatcher struct {
	log      *logger.Logger
	stages   []Stage
	terminal *Classifier
}

// NewDispatcher builds the standard chain: local model, Gemini, heuristic.
// local and gen may be nil, in which case their stage is left out.
func NewDispatcher(log *logger.Logger, local *LocalModel, gen Generator, classifier *Classifier) *Dispatcher {
	if classifier == nil {
		classifier = NewClassifier(DefaultTables())
	}
	var stages []Stage
	if local != nil {
		stages = append(stages, Stage{Name: models.SourceLocalModel, Run: localModelStage(local, log)})
	}
	if gen != nil {
		stages = append(stages, Stage{Name: models.SourceGemini, Run: generatorStage(gen, log)})
	}
	stages = append(stages, Stage{Name: models.SourceHeuristic, Run: heuristicStage(classifier)})
	return NewDispatcherWithStages(log, classifier, stages...)
}

// NewDispatcherWithStages uses the given stages as is. The classifier answers
// when every stage declines.
func NewDispatcherWithStages(log *logger.Logger, classifier *Classifier, stages ...Stage) *Dispatcher {
	if classifier == nil {
		classifier = NewClassifier(DefaultTables())
	}
	return &Dispatcher{log: log.With("service", "Dispatcher"), stages: stages, terminal: classifier}
}

// StageNames lists the chain in the order it is tried.
func (d *Dispatcher) StageNames() []string {
	names := make([]string, len(d.stages))
	for i, s := range d.stages {
		names[i] = s.Name
	}
	return names
}

// Dispatch runs the chain for task. Empty text short-circuits to the
// language-specific "no input" error.
func (d *Dispatcher) Dispatch(ctx context.Context, task Task, text, lang string) models.Result {
	text = strings.TrimSpace(text)
	if text == "" {
		return EmptyInputResult(task, lang)
	}

	for _, stage := range d.stages {
		start := time.Now()
		res, ok := d.runStage(ctx, stage, task, text, lang)
		if ok && res != nil {
			d.log.Debug("stage answered", "stage", stage.Name, "task", task, "elapsed", time.Since(start))
			return res
		}
		d.log.Debug("stage declined", "stage", stage.Name, "task", task)
	}

	if task == TaskResearch {
		return d.terminal.Research(text, lang)
	}
	return d.terminal.Analyze(text, lang)
}

func (d *Dispatcher) runStage(ctx context.Context, stage Stage, task Task, text, lang string) (res models.Result, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Error("stage panicked", "stage", stage.Name, "panic", rec)
			res, ok = nil, false
		}
	}()
	return stage.Run(ctx, task, text, lang)
}

func localModelStage(m *LocalModel, log *logger.Logger) StageFunc {
	return func(_ context.Context, task Task, text, lang string) (models.Result, bool) {
		if !m.Supports(task) {
			return nil, false
		}
		raw, err := m.Predict(task, text, lang)
		if err != nil {
			log.Warn("local model prediction failed", "task", task, "error", err)
			return nil, false
		}
		res, err := DecodeResult(raw, task)
		if err != nil {
			log.Warn("local model output not usable", "task", task, "error", err)
			return nil, false
		}
		stampMeta(res, models.ResultMeta{Source: models.SourceLocalModel, ModelVersion: m.Version, GeneratedAt: time.Now().UTC()})
		return res, true
	}
}

func generatorStage(gen Generator, log *logger.Logger) StageFunc {
	return func(ctx context.Context, task Task, text, lang string) (models.Result, bool) {
		raw, err := gen.Generate(ctx, task, lang, text)
		if err != nil {
			log.Warn("remote model call failed", "model", gen.Model(), "task", task, "error", err)
			return nil, false
		}
		res, err := DecodeResult(raw, task)
		if err != nil {
			log.Warn("remote model output not usable", "model", gen.Model(), "task", task, "error", err)
			return nil, false
		}
		stampMeta(res, models.ResultMeta{Source: models.SourceGemini, ModelVersion: gen.Model(), GeneratedAt: time.Now().UTC()})
		return res, true
	}
}

func heuristicStage(c *Classifier) StageFunc {
	return func(_ context.Context, task Task, text, lang string) (models.Result, bool) {
		if task == TaskResearch {
			return c.Research(text, lang), true
		}
		return c.Analyze(text, lang), true
	}
}

func stampMeta(res models.Result, meta models.ResultMeta) {
	switch r := res.(type) {
	case *models.ContractFindings:
		r.ResultMeta = meta
	case *models.LegalGuidance:
		r.ResultMeta = meta
	case *models.ResearchSummary:
		r.ResultMeta = meta
	}
}

// ResultSource returns the stage name recorded on res, or "" for errors.
func ResultSource(res models.Result) string {
	switch r := res.(type) {
	case *models.ContractFindings:
		return r.Source
	case *models.LegalGuidance:
		return r.Source
	case *models.ResearchSummary:
		return r.Source
	}
	return ""
}
