// Package triage provides the business boundary for acuity classification.
// It defines the Engine (a pure vital-sign and complaint decision table), the
// Service (validation, IDs, metrics, notifications), and the domain models.
package triage
