// Package connector defines the remote API the drafts are synchronized with.
package connector

//go:generate mockgen -destination mock_connector/connector.go . Connector
