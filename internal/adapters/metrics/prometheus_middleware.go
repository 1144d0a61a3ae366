package metrics

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/mbendaoud/fretplan-go/internal/application/common"
)

// PrometheusMiddleware wraps mediator dispatch and records duration and
// outcome per command. Request types are reduced to their bare name, so
// "*commands.RunBatchCommand" is labelled "RunBatchCommand".
func PrometheusMiddleware(collector *CommandMetricsCollector) common.Middleware {
	return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordCommandExecution(commandLabel(request), time.Since(start).Seconds(), err == nil)

		return response, err
	}
}

// commandLabel derives the metric label from the request's dynamic type
func commandLabel(request common.Request) string {
	if request == nil {
		return "UnknownCommand"
	}

	name := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
