// Copyright 2020 Insolar Network Ltd.
// All rights reserved.
// This material is licensed under the Insolar License version 1.0,
// available at https://github.com/insolar/timelock/blob/master/LICENSE.md.

package observability

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/insolar/timelock/configuration"
)

func Make(cfg configuration.Log) *Observability {
	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		log.WithField("level", cfg.Level).Warnf("unknown log level, falling back to info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return &Observability{
		log:      log,
		metrics:  prometheus.NewRegistry(),
		counters: make(map[string]prometheus.Counter),
		gauges:   make(map[string]prometheus.Gauge),
	}
}

type Observability struct {
	log     *logrus.Logger
	metrics *prometheus.Registry

	mu       sync.Mutex
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
}

func (o *Observability) Log() *logrus.Logger {
	return o.log
}

func (o *Observability) Metrics() *prometheus.Registry {
	return o.metrics
}

func (o *Observability) Counter(opts prometheus.CounterOpts) prometheus.Counter {
	o.mu.Lock()
	defer o.mu.Unlock()

	c, ok := o.counters[opts.Name]
	if ok {
		return c
	}
	c = prometheus.NewCounter(opts)
	err := o.metrics.Register(c)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return c
	}
	o.counters[opts.Name] = c
	return c
}

func (o *Observability) Gauge(opts prometheus.GaugeOpts) prometheus.Gauge {
	o.mu.Lock()
	defer o.mu.Unlock()

	g, ok := o.gauges[opts.Name]
	if ok {
		return g
	}
	g = prometheus.NewGauge(opts)
	err := o.metrics.Register(g)
	if err != nil {
		o.log.WithField("metric_collector", opts.Name).
			Errorf("failed to register metric")
		return g
	}
	o.gauges[opts.Name] = g
	return g
}

type EngineMetrics struct {
	Deposits      prometheus.Counter
	Withdrawals   prometheus.Counter
	Released      prometheus.Counter
	Rejected      prometheus.Counter
	PublishErrors prometheus.Counter

	Outstanding prometheus.Gauge
}

// MakeEngineMetrics registers one timelock_<field>_total counter per counter field.
func MakeEngineMetrics(obs *Observability) *EngineMetrics {
	m := &EngineMetrics{}
	v := reflect.ValueOf(m).Elem()
	t := v.Type()
	counterType := reflect.TypeOf((*prometheus.Counter)(nil)).Elem()
	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).Type != counterType {
			continue
		}
		field := strings.ToLower(t.Field(i).Name)
		collector := obs.Counter(prometheus.CounterOpts{
			Name: fmt.Sprintf("timelock_%s_total", field),
			Help: fmt.Sprintf("Number of %s handled by the engine.", field),
		})
		v.Field(i).Set(reflect.ValueOf(collector))
	}
	m.Outstanding = obs.Gauge(prometheus.GaugeOpts{
		Name: "timelock_outstanding_units",
		Help: "Units committed to recipients and not released yet.",
	})
	return m
}

// StorageErrors is the error counter of a single storage.
func StorageErrors(obs *Observability, storage string) prometheus.Counter {
	return obs.Counter(prometheus.CounterOpts{
		Name: fmt.Sprintf("timelock_%s_storage_error_counter", storage),
		Help: fmt.Sprintf("Number of failed %s storage operations.", storage),
	})
}
