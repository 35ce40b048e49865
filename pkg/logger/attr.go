package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the subsystem emitting the record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// RiskScore records a fingerprint risk score.
func RiskScore(score int) slog.Attr {
	return slog.Int("risk_score", score)
}

// OwnerKind records the identity class of a session.
func OwnerKind(kind string) slog.Attr {
	return slog.String("owner_kind", kind)
}

// ChallengeID records a challenge session identifier.
func ChallengeID(id string) slog.Attr {
	return slog.String("challenge_id", id)
}
