package match

import (
	"github.com/poiesic/grantmatch/core"
	"github.com/poiesic/grantmatch/rank"
)

// MatchMonitor provides hooks to observe the matching pipeline.
// Implement this interface to track intermediate steps and results during a match.
type MatchMonitor interface {
	Start(query core.Query)
	AfterEmbedding(dimensions int)
	AfterSimilarityRank(shortlist []rank.Scored)
	RerankSucceeded(scores map[string]float64)
	RerankFailed(err error)
	CacheHit(grantId string, score int)
	ScoredByLLM(grantId string, score int)
	ScoredByFallback(grantId string, score float64)
	Finish(result *core.MatchResult)
}

// noopMonitor is a no-op implementation of MatchMonitor
type noopMonitor struct{}

var _ MatchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.Query)                      {}
func (n *noopMonitor) AfterEmbedding(_ int)                    {}
func (n *noopMonitor) AfterSimilarityRank(_ []rank.Scored)     {}
func (n *noopMonitor) RerankSucceeded(_ map[string]float64)    {}
func (n *noopMonitor) RerankFailed(_ error)                    {}
func (n *noopMonitor) CacheHit(_ string, _ int)                {}
func (n *noopMonitor) ScoredByLLM(_ string, _ int)             {}
func (n *noopMonitor) ScoredByFallback(_ string, _ float64)    {}
func (n *noopMonitor) Finish(_ *core.MatchResult)              {}
