// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pterm/pterm"
)

// ConnectErrorType represents the category of a connection-level fault
type ConnectErrorType int

const (
	ConnectErrorUnknown ConnectErrorType = iota
	ConnectErrorNetwork
	ConnectErrorAuth
	ConnectErrorTimeout
	ConnectErrorDatabaseMissing
	ConnectErrorTLS
)

// ClassifyConnectError categorizes an error returned while opening a connection
func ClassifyConnectError(err error) ConnectErrorType {
	if err == nil {
		return ConnectErrorUnknown
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "28P01", "28000":
			return ConnectErrorAuth
		case "3D000":
			return ConnectErrorDatabaseMissing
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ConnectErrorTimeout
	}

	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "tls") || strings.Contains(lower, "ssl") || strings.Contains(lower, "certificate") {
		return ConnectErrorTLS
	}
	if strings.Contains(lower, "timeout") {
		return ConnectErrorTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) || strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") {
		return ConnectErrorNetwork
	}
	if strings.Contains(lower, "password authentication failed") {
		return ConnectErrorAuth
	}

	return ConnectErrorUnknown
}

// FormatConnectError formats a connection fault in a user-friendly way.
// Credentials in the technical details are masked.
func FormatConnectError(err error) string {
	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Cannot connect to database"))
	builder.WriteString("\n\n")

	switch ClassifyConnectError(err) {
	case ConnectErrorNetwork:
		builder.WriteString("The database server could not be reached.\n")
		builder.WriteString("Check that:\n")
		builder.WriteString("  • The host and port in the connection string are correct\n")
		builder.WriteString("  • The server is running and accepts TCP connections\n")
		builder.WriteString("  • No firewall blocks the connection\n")

	case ConnectErrorAuth:
		builder.WriteString("The server rejected the credentials.\n")
		builder.WriteString("  • Verify the user name and password in the connection string\n")
		builder.WriteString("  • Run 'sqlrun connect' to store a new connection string\n")

	case ConnectErrorTimeout:
		builder.WriteString("The connection attempt timed out.\n")
		builder.WriteString("  • The server may be overloaded or unreachable\n")
		builder.WriteString("  • Add connect_timeout=<seconds> to the connection string to wait longer\n")

	case ConnectErrorDatabaseMissing:
		builder.WriteString("The database named in the connection string does not exist.\n")

	case ConnectErrorTLS:
		builder.WriteString("The TLS handshake with the server failed.\n")
		builder.WriteString("  • Check the sslmode parameter of the connection string\n")

	default:
		builder.WriteString("No statement was executed.\n")
	}

	if err != nil {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	}

	return builder.String()
}
