package teams

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/mister-service/internal/cpmodel"
	"github.com/preston-bernstein/mister-service/internal/domain"
	"github.com/preston-bernstein/mister-service/internal/logging"
	"github.com/preston-bernstein/mister-service/internal/metrics"
	"github.com/preston-bernstein/mister-service/internal/planner"
	"github.com/preston-bernstein/mister-service/internal/selection"
	"github.com/preston-bernstein/mister-service/internal/validation"
)

// Service validates scenarios, solves them and assembles the resulting teams.
// It keeps no per-request state and is safe for concurrent use when rng is.
type Service struct {
	engine   cpmodel.Engine
	rng      selection.Rand
	logger   *slog.Logger
	recorder *metrics.Recorder
	now      func() time.Time
}

// NewService constructs a Service. logger and recorder may be nil.
func NewService(engine cpmodel.Engine, rng selection.Rand, logger *slog.Logger, recorder *metrics.Recorder) *Service {
	return &Service{
		engine:   engine,
		rng:      rng,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// Validate runs only the feasibility checks.
func (s *Service) Validate(scenario domain.Scenario) error {
	return validation.Scenario(scenario)
}

// MakeTeams partitions the scenario's players into balanced teams. Domain
// failures come back as the typed errors in package domain; anything else is
// an unexpected solver failure.
func (s *Service) MakeTeams(ctx context.Context, scenario domain.Scenario) (domain.Solution, error) {
	logger := logging.FromContext(ctx, s.logger)

	if err := validation.Scenario(scenario); err != nil {
		logging.Warn(logger, "scenario rejected", "error", err)
		return domain.Solution{}, err
	}

	plan, err := planner.Build(scenario)
	if err != nil {
		return domain.Solution{}, err
	}
	logging.Info(logger, "model built",
		logging.FieldPlayers, len(plan.Players),
		logging.FieldTeams, plan.NTeams,
		"team_size", plan.TeamSize,
		"positions", positionCounts(plan.Players),
		logging.FieldAvgRating, plan.AvgRating,
	)

	policy := selection.PolicyFor(scenario.Optimal)
	start := s.now()
	res, err := selection.New(s.engine, s.rng, logger).Select(ctx, plan.Model, policy)
	sample := metrics.SolveSample{
		Duration:  s.now().Sub(start),
		Solutions: res.Stats.Solutions,
		Err:       err,
	}
	if err != nil {
		s.recorder.RecordSolve(string(policy), sample)
		if domain.IsDomainError(err) {
			logging.Warn(logger, "no solution", logging.FieldPolicy, policy, logging.FieldStatus, res.Status.String())
		} else {
			logging.Error(logger, "solver failed", err, logging.FieldPolicy, policy)
		}
		return domain.Solution{}, err
	}

	solution := plan.Assemble(res.Solution)
	epsilon := res.Solution.Value(plan.Epsilon)
	sample.Epsilon = epsilon
	s.recorder.RecordSolve(string(policy), sample)

	logging.Info(logger, "teams made",
		logging.FieldPolicy, policy,
		logging.FieldStatus, res.Status.String(),
		logging.FieldEpsilon, epsilon,
		"balance", solution.Balance,
		logging.FieldConflicts, res.Stats.Conflicts,
		logging.FieldBranches, res.Stats.Branches,
		logging.FieldWallTime, res.Stats.WallTime,
		logging.FieldSolutions, res.Stats.Solutions,
		"accepted", res.Accepted,
	)
	return solution, nil
}

func positionCounts(players []domain.Player) map[string]int {
	counts := make(map[string]int, 3)
	for _, pos := range domain.Positions() {
		counts[pos.String()] = 0
	}
	for _, p := range players {
		counts[p.Position.String()]++
	}
	return counts
}
