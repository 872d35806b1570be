// Package warmup handles the scheduled events that keep Lambda instances warm.
// CloudWatch Events send {"source":"warmup","concurrency":N}; the receiving
// instance optionally invokes its own function N more times asynchronously.
package warmup

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/rs/zerolog"
)

const (
	// Source identifies warmup events from CloudWatch
	Source = "warmup"

	// Delay ensures instances overlap to create true concurrency
	Delay = 75 * time.Millisecond
)

// Event represents the CloudWatch Event payload for warmup
type Event struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// Response is the response returned by warmup operations
type Response struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// Invoker is the subset of the Lambda client used for self-invocation.
type Invoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// Parse checks if the event is a warmup event
func Parse(event json.RawMessage) (*Event, bool) {
	var eventMap map[string]interface{}
	if err := json.Unmarshal(event, &eventMap); err != nil {
		return nil, false
	}

	source, ok := eventMap["source"].(string)
	if !ok || source != Source {
		return nil, false
	}

	warmup := &Event{Source: source}

	// Parse concurrency (optional, defaults to 0)
	if concurrency, ok := eventMap["concurrency"].(float64); ok && concurrency > 0 {
		warmup.Concurrency = int(concurrency)
	}

	return warmup, true
}

// Handle processes a warmup event, creating a Lambda client from the
// default AWS config when fan-out is requested.
func Handle(ctx context.Context, ev *Event, log zerolog.Logger) (interface{}, error) {
	var client Invoker
	if ev.Concurrency > 0 {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("warmup: failed to load AWS config, skipping fan-out")
		} else {
			client = lambdasdk.NewFromConfig(cfg)
		}
	}
	return HandleWithInvoker(ctx, ev, client, os.Getenv("AWS_LAMBDA_FUNCTION_NAME"), log), nil
}

// HandleWithInvoker processes a warmup event using the given client.
// A nil client disables fan-out.
func HandleWithInvoker(ctx context.Context, ev *Event, client Invoker, functionName string, log zerolog.Logger) map[string]interface{} {
	instancesWarmed := 1 // This instance counts as 1

	if ev.Concurrency > 0 && client != nil {
		if err := selfInvoke(ctx, client, functionName, ev.Concurrency); err != nil {
			log.Warn().Err(err).Int("concurrency", ev.Concurrency).Msg("warmup: self-invoke failed")
		} else {
			instancesWarmed += ev.Concurrency
		}
	}

	// Brief delay to ensure instances overlap
	time.Sleep(Delay)

	log.Debug().Int("instances", instancesWarmed).Msg("warmup handled")

	return map[string]interface{}{
		"statusCode": 200,
		"body": Response{
			Status:          "warm",
			InstancesWarmed: instancesWarmed,
		},
	}
}

// selfInvoke invokes the function N times asynchronously
// to create additional warm instances.
func selfInvoke(ctx context.Context, client Invoker, functionName string, count int) error {
	// Payload for child invocations (concurrency=0 to prevent infinite loop)
	payload, err := json.Marshal(Event{
		Source:      Source,
		Concurrency: 0, // Critical: prevent recursive invocation
	})
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	var invokeErr error
	var errMu sync.Mutex

	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(functionName),
				InvocationType: types.InvocationTypeEvent, // Async invocation
				Payload:        payload,
			})

			if err != nil {
				errMu.Lock()
				if invokeErr == nil {
					invokeErr = err
				}
				errMu.Unlock()
			}
		}()
	}

	wg.Wait()
	return invokeErr
}
