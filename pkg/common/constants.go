package common

const (
	RedisStreamTranscriptParse      = "call.transcript.parse"
	RedisStreamRiskAnalysis         = "call.risk.analysis"
	RedisStreamInsightConsolidation = "opportunity.insight.consolidate"
	RedisStreamDocumentGeneration   = "opportunity.document.generate"
	RedisStreamAccountResearch      = "account.research.refresh"

	RedisStreamGroup    = "insight-worker-group"
	RedisStreamConsumer = "insight-worker-consumer"
)
