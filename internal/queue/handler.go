package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/atlas-kg/atlas/internal/util"
	"github.com/atlas-kg/atlas/pkg/analysis"
	"github.com/atlas-kg/atlas/pkg/logger"
	"github.com/atlas-kg/atlas/pkg/rank"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	maxQueryRetries = 3
	topEntitiesLog  = 10
)

// MutationMessage notifies the worker that graph data changed outside the
// analysis engine. Cached results derived from the old graph are stale the
// moment it arrives.
type MutationMessage struct {
	GraphID       string `json:"graph_id"`
	EntityID      string `json:"entity_id,omitempty"`
	Change        string `json:"change,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// ProcessMutationMessage clears the analyzer cache and refreshes the
// importance ranking after a graph mutation. A failed refresh is returned
// to the caller so the message lands on the retry queue.
func ProcessMutationMessage(
	ctx context.Context,
	analyzer *analysis.Analyzer,
	ranker *rank.Ranker,
	body string,
) error {
	var msg MutationMessage
	if err := json.Unmarshal([]byte(body), &msg); err != nil {
		return fmt.Errorf("failed to parse mutation message: %w", err)
	}
	if msg.CorrelationID == "" {
		msg.CorrelationID, _ = gonanoid.New()
	}

	logger.Info("Processing graph mutation",
		"graph_id", msg.GraphID,
		"entity_id", msg.EntityID,
		"change", msg.Change,
		"correlation_id", msg.CorrelationID,
	)

	analyzer.ClearCache()
	logger.Debug("Analysis cache cleared", "correlation_id", msg.CorrelationID)

	result, err := util.RetryWithContext(ctx, maxQueryRetries, func(ctx context.Context) (*rank.Result, error) {
		res, err := ranker.CalculateImportance(ctx, nil)
		if err != nil {
			return nil, err
		}
		if res.Metadata.Error != "" {
			return nil, fmt.Errorf("ranking degraded: %s", res.Metadata.Error)
		}
		return res, nil
	})
	if err != nil {
		return fmt.Errorf("failed to refresh importance ranking: %w", err)
	}

	logger.Info("Importance ranking refreshed",
		"node_count", result.Metadata.NodeCount,
		"correlation_id", msg.CorrelationID,
	)
	for i, record := range result.RankedEntities {
		if i == topEntitiesLog {
			break
		}
		logger.Debug("Top entity",
			"rank", record.Rank,
			"name", record.Name,
			"type", record.Type,
			"importance", record.Importance,
		)
	}

	return nil
}
