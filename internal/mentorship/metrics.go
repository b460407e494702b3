package mentorship

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "compass_relationship_transitions_total",
	Help: "Mentor/client relationship lifecycle transitions by kind",
}, []string{"transition"})

const (
	transitionInvite    = "invite"
	transitionAccept    = "accept"
	transitionCancel    = "cancel"
	transitionTerminate = "terminate"
	transitionPurge     = "purge"
)
