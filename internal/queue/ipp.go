package queue

import (
	"context"
	"fmt"

	ipp "github.com/phin1x/go-ipp"

	"git.home.luguber.info/inful/printwatch/internal/config"
)

// whichJobsNotCompleted selects jobs the print service still considers
// pending, per RFC 8011 which-jobs semantics.
const whichJobsNotCompleted = "not-completed"

// IPPInspector queries a CUPS server over IPP for the active job count.
type IPPInspector struct {
	client *ipp.IPPClient
	queue  string
}

// NewIPPInspector creates an inspector for the configured CUPS queue.
func NewIPPInspector(cfg config.QueueConfig) *IPPInspector {
	return &IPPInspector{
		client: ipp.NewIPPClient(cfg.CUPS.Host, cfg.CUPS.Port, cfg.CUPS.Username, cfg.CUPS.Password, cfg.CUPS.TLS),
		queue:  cfg.Name,
	}
}

// ActiveJobs implements Inspector.
func (i *IPPInspector) ActiveJobs(_ context.Context) (int, error) {
	jobs, err := i.client.GetJobs(i.queue, "", whichJobsNotCompleted, false, 0, 0, nil)
	if err != nil {
		return 0, fmt.Errorf("ipp get-jobs for queue %q: %w", i.queue, err)
	}
	return len(jobs), nil
}
