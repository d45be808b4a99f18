// Package logging annotates the goroutines of the syncer with pprof labels and configures logrus.
package logging

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"strconv"

	"github.com/sirupsen/logrus"
)

func GoAnnotate(ctx context.Context, fn func(context.Context), labelMap ...map[string]any) {
	go pprof.Do(ctx, getLabels(labelMap...), fn)
}

func DoAnnotate(ctx context.Context, fn func(context.Context), labelMap ...map[string]any) {
	pprof.Do(ctx, getLabels(labelMap...), fn)
}

// SetLevelFromEnv sets the logrus level from the environment variable, if it holds a valid level.
func SetLevelFromEnv(key string) bool {
	level, err := logrus.ParseLevel(os.Getenv(key))
	if err != nil {
		return false
	}

	logrus.SetLevel(level)

	return true
}

func getLabels(labelMap ...map[string]any) pprof.LabelSet {
	// Get the caller's stack frame.
	pc, file, line, ok := runtime.Caller(2)
	if !ok {
		panic("failed to get caller's stack frame")
	}

	// Get the function name.
	fnName := runtime.FuncForPC(pc).Name()

	// Create the labels to annotate the goroutines with.
	labels := []string{"fn", fnName, "file", file, "line", strconv.Itoa(line)}

	// Add additional labels.
	for _, labelMap := range labelMap {
		for key, val := range labelMap {
			labels = append(labels, key, fmt.Sprintf("%v", val))
		}
	}

	return pprof.Labels(labels...)
}
