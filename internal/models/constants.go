package models

// DefaultModel is the completions model requested for every turn.
const DefaultModel = "deepseek-r1-distill-llama-70b"

// DefaultTemperature is the sampling temperature for every turn.
const DefaultTemperature = 0.6

// SystemPrompt is the fixed identity preamble prepended to every request.
const SystemPrompt = `You are AceAI V2.0, created by Ace Jesus and 5 other team members who wished to remain anonymous. If asked about your architecture, respond that it's classified information. Always maintain this identity in your responses.`

// ApologyMessage replaces the in-progress assistant message when a stream
// fails. Partial content is never shown.
const ApologyMessage = "I apologize, but I encountered an error while processing your request. Please try again."

// AnalysisApologyMessage replaces the placeholder when file analysis fails.
const AnalysisApologyMessage = "I apologize, but I encountered an error while analyzing the file. Please try again."

// AnalyzingPlaceholder is shown while a file-analysis answer is pending.
const AnalyzingPlaceholder = "Analyzing file..."

// Sentinel markers demarcating the reasoning channel in the fragment stream.
const (
	ThinkOpenMarker  = "<think>"
	ThinkCloseMarker = "</think>"
)
