package nosqldb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nosqldb/nosqldb-go/internal/protocol"
)

// AdminState is the completion state of an administrative DDL operation.
type AdminState = protocol.AdminState

// Admin states, re-exported for caller-facing comparisons.
const (
	AdminInProgress = protocol.AdminInProgress
	AdminComplete   = protocol.AdminComplete
)

// AdminResult is the response to an administrative DDL statement.
type AdminResult = protocol.SystemResult

// AdminOptions configures an ExecuteAdmin call.
type AdminOptions struct {
	Timeout time.Duration

	// WaitForCompletion polls for the operation to reach AdminComplete
	// before returning (spec §4.1 "poll for completion").
	WaitForCompletion bool
	PollTimeout       time.Duration
	PollDelay         time.Duration
}

// ExecuteAdmin issues an administrative DDL statement (CREATE NAMESPACE,
// CREATE USER, CREATE ROLE, SHOW ... AS JSON, and similar), not scoped to a
// single table.
func (c *Client) ExecuteAdmin(ctx context.Context, statement string, opts AdminOptions) (*AdminResult, error) {
	req := &protocol.SystemRequest{Statement: statement}
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(opts.Timeout))

	res, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	result := res.(*AdminResult)

	if !opts.WaitForCompletion || result.State == AdminComplete {
		return result, nil
	}
	return c.waitForAdmin(ctx, result, opts)
}

func (c *Client) waitForAdmin(ctx context.Context, started *AdminResult, opts AdminOptions) (*AdminResult, error) {
	pollTimeout := opts.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = c.cfg.defaultPollTimeout
	}
	pollDelay := opts.PollDelay
	if pollDelay <= 0 {
		pollDelay = c.cfg.defaultPollDelay
	}

	statusReq := &protocol.SystemStatusRequest{OperationID: started.OperationID, Statement: started.Statement}
	return c.waiter.WaitForAdmin(ctx, statusReq, pollTimeout, pollDelay)
}

// GetAdminStatus polls the completion state of a previously-started admin
// operation by its OperationID.
func (c *Client) GetAdminStatus(ctx context.Context, operationID, statement string, timeout time.Duration) (*AdminResult, error) {
	req := &protocol.SystemStatusRequest{OperationID: operationID, Statement: statement}
	req.Init(protocol.SystemClock{}, c.defaultTimeoutOr(timeout))

	res, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.(*AdminResult), nil
}

// namespaceListJSON and friends mirror the shape of the admin-JSON payload
// produced by "SHOW AS JSON" statements (spec §4.1: "derived from admin
// SHOW ... AS JSON").
type namespaceListJSON struct {
	Namespaces []string `json:"namespaces"`
}

type userListJSON struct {
	Users []UserInfo `json:"users"`
}

type roleListJSON struct {
	Roles []string `json:"roles"`
}

// UserInfo describes one user entry returned by ListUsers.
type UserInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListNamespaces lists the namespaces visible to the current credentials,
// derived from "SHOW AS JSON NAMESPACES" (spec §4.1).
func (c *Client) ListNamespaces(ctx context.Context, timeout time.Duration) ([]string, error) {
	result, err := c.ExecuteAdmin(ctx, "SHOW AS JSON NAMESPACES", AdminOptions{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	var payload namespaceListJSON
	if err := json.Unmarshal([]byte(result.ResultJSON), &payload); err != nil {
		return nil, protocol.Wrap(protocol.KindBadProtocol, err, "decode SHOW AS JSON NAMESPACES result")
	}
	return payload.Namespaces, nil
}

// ListUsers lists the users defined in the system, derived from "SHOW AS
// JSON USERS".
func (c *Client) ListUsers(ctx context.Context, timeout time.Duration) ([]UserInfo, error) {
	result, err := c.ExecuteAdmin(ctx, "SHOW AS JSON USERS", AdminOptions{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	var payload userListJSON
	if err := json.Unmarshal([]byte(result.ResultJSON), &payload); err != nil {
		return nil, protocol.Wrap(protocol.KindBadProtocol, err, "decode SHOW AS JSON USERS result")
	}
	return payload.Users, nil
}

// ListRoles lists the roles defined in the system, derived from "SHOW AS
// JSON ROLES".
func (c *Client) ListRoles(ctx context.Context, timeout time.Duration) ([]string, error) {
	result, err := c.ExecuteAdmin(ctx, "SHOW AS JSON ROLES", AdminOptions{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	var payload roleListJSON
	if err := json.Unmarshal([]byte(result.ResultJSON), &payload); err != nil {
		return nil, protocol.Wrap(protocol.KindBadProtocol, err, "decode SHOW AS JSON ROLES result")
	}
	return payload.Roles, nil
}
