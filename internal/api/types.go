package api

import (
	"fmt"
	"time"
)

// RunStatus is the lifecycle state reported by the server for a run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunPaused    RunStatus = "paused"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Terminal reports whether the status can no longer change.
func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed
}

// User is the authenticated identity returned by the auth endpoints.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse pairs a bearer token with the user it belongs to. Verify
// responses may omit the token, in which case the stored one stays valid.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// EvolutionRun is one experiment as the server reports it.
type EvolutionRun struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Status           RunStatus      `json:"status"`
	CurrentIteration int            `json:"currentIteration"`
	MaxIterations    int            `json:"maxIterations"`
	BestScore        float64        `json:"bestScore"`
	StartTime        string         `json:"startTime"`
	EndTime          string         `json:"endTime,omitempty"`
	Config           map[string]any `json:"config"`
}

// Program is one candidate solution produced during a run.
type Program struct {
	ID             string             `json:"id"`
	Code           string             `json:"code"`
	Language       string             `json:"language"`
	ParentID       string             `json:"parentId,omitempty"`
	Generation     int                `json:"generation"`
	Island         int                `json:"island"`
	Timestamp      string             `json:"timestamp"`
	IterationFound int                `json:"iterationFound"`
	Metrics        map[string]float64 `json:"metrics"`
	Complexity     float64            `json:"complexity"`
	Diversity      float64            `json:"diversity"`
	Metadata       map[string]any     `json:"metadata"`
}

// combinedScoreKey is the metric the server uses as the program's overall
// fitness. Filtering and score sorting key off it.
const combinedScoreKey = "combined_score"

// CombinedScore returns the program's overall fitness and whether the
// server reported one.
func (p Program) CombinedScore() (float64, bool) {
	v, ok := p.Metrics[combinedScoreKey]
	return v, ok
}

// TimestampMillis parses the program timestamp to epoch milliseconds.
// Unparsable timestamps sort as 0.
func (p Program) TimestampMillis() int64 {
	t, err := time.Parse(time.RFC3339, p.Timestamp)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}

// ConfigPreset is a saved run configuration managed through /api/config.
type ConfigPreset struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// FormatMetadataValue renders an opaque metadata value for display:
// numbers get fixed-decimal formatting, everything else passes through.
func FormatMetadataValue(v any) string {
	switch n := v.(type) {
	case float64:
		return fmt.Sprintf("%.4f", n)
	case float32:
		return fmt.Sprintf("%.4f", n)
	case int:
		return fmt.Sprintf("%d", n)
	case int64:
		return fmt.Sprintf("%d", n)
	default:
		return fmt.Sprintf("%v", v)
	}
}
