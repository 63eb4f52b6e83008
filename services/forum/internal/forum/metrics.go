package forum

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learnhub_forum_mutations_total",
		Help: "Forum mutations by operation and whether the forest changed",
	}, []string{"op", "result"})

	savesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learnhub_forum_saves_total",
		Help: "Full-forest saves by result",
	}, []string{"result"})

	loadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "learnhub_forum_loads_total",
		Help: "Startup loads by result",
	}, []string{"result"})
)
