package admission

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var validationsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "admission_validations_processed",
	Help: "Number of member validations processed, by outcome",
}, []string{"outcome"})

var validatorFaults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "admission_validator_faults",
	Help: "Number of validator faults isolated during chain execution",
}, []string{"validator"})

var purgeScanned = promauto.NewCounter(prometheus.CounterOpts{
	Name: "admission_purge_scanned",
	Help: "Number of kickable members found by purge scans",
})

var purgeKicks = promauto.NewCounter(prometheus.CounterOpts{
	Name: "admission_purge_kicks",
	Help: "Number of members removed by purge execution",
})

var overrideActions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "admission_override_actions",
	Help: "Number of manual override actions taken via reactions",
}, []string{"action"})

var lockdownChanges = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "admission_lockdown_changes",
	Help: "Number of lockdown activations and deactivations",
}, []string{"change"})

var modlogPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "admission_modlog_publish_errors",
	Help: "Number of failed modlog publishes",
})
