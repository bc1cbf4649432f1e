package api

import (
	"fmt"

	"github.com/JaimeStill/meridian/internal/assessments"
	"github.com/JaimeStill/meridian/internal/consolidated"
	"github.com/JaimeStill/meridian/internal/reports"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Assessments  assessments.System
	Reports      reports.System
	Consolidated consolidated.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	assessmentsSystem := assessments.New(
		runtime.Database.Connection(),
		runtime.Logger,
	)

	reportsSystem, err := reports.New(
		runtime.Reports,
		runtime.Database.Connection(),
		assessmentsSystem,
		runtime.Storage,
		runtime.Dispatcher,
		runtime.Converter,
		runtime.Logger,
	)
	if err != nil {
		return nil, fmt.Errorf("reports init failed: %w", err)
	}

	return &Domain{
		Assessments:  assessmentsSystem,
		Reports:      reportsSystem,
		Consolidated: consolidated.New(assessmentsSystem, runtime.Logger),
	}, nil
}

// Start registers domain background work with the lifecycle coordinator.
func (d *Domain) Start(runtime *Runtime) error {
	if err := d.Reports.Start(runtime.Lifecycle); err != nil {
		return fmt.Errorf("reports start failed: %w", err)
	}
	return nil
}
