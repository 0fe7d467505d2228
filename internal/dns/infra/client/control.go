package client

import (
	"context"
	"strings"

	"github.com/haukened/rr-shift/internal/dns/domain"
)

// controlCommands is the per-resolver argv table for lifecycle operations.
// A nil command with a note means the operation happens implicitly (CoreDNS
// reloads itself when the reload plugin watches the Corefile).
type controlCommands struct {
	start      []string
	stop       []string
	restart    []string
	reload     []string
	reloadNote string
}

func commandsFor(rtype domain.ResolverType) controlCommands {
	if rtype == domain.ResolverCoreDNS {
		return controlCommands{
			start:      []string{"systemctl", "start", "coredns"},
			stop:       []string{"systemctl", "stop", "coredns"},
			restart:    []string{"systemctl", "restart", "coredns"},
			reloadNote: "CoreDNS reloads automatically when the reload plugin is enabled",
		}
	}
	return controlCommands{
		start:   []string{"systemctl", "start", "unbound"},
		stop:    []string{"systemctl", "stop", "unbound"},
		restart: []string{"systemctl", "restart", "unbound"},
		reload:  []string{"unbound-control", "reload"},
	}
}

// Start starts the resolver service.
func (c *Client) Start(ctx context.Context) domain.ControlResult {
	return c.control(ctx, "start", c.commands.start, "")
}

// Stop stops the resolver service.
func (c *Client) Stop(ctx context.Context) domain.ControlResult {
	return c.control(ctx, "stop", c.commands.stop, "")
}

// Restart restarts the resolver service.
func (c *Client) Restart(ctx context.Context) domain.ControlResult {
	return c.control(ctx, "restart", c.commands.restart, "")
}

// Reload asks the resolver to re-read its configuration.
func (c *Client) Reload(ctx context.Context) domain.ControlResult {
	return c.control(ctx, "reload", c.commands.reload, c.commands.reloadNote)
}

func (c *Client) control(ctx context.Context, action string, argv []string, note string) domain.ControlResult {
	result := domain.ControlResult{Action: action, Timestamp: c.clock.Now()}

	if len(argv) == 0 {
		result.Success = note != ""
		result.Message = note
		if note == "" {
			result.Message = action + " is not supported for " + string(c.rtype)
		}
		return result
	}

	stdout, stderr, err := c.runner.Run(ctx, argv[0], argv[1:]...)
	if err != nil {
		result.Message = strings.TrimSpace(stderr)
		if result.Message == "" {
			result.Message = err.Error()
		}
		c.log.Error(map[string]any{
			"resolver": c.rtype,
			"action":   action,
			"error":    err.Error(),
		}, "service control failed")
		return result
	}

	result.Success = true
	result.Message = strings.TrimSpace(stdout)
	c.log.Info(map[string]any{"resolver": c.rtype, "action": action}, "service control succeeded")
	return result
}
