package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// TestOrchestrator runs the scenario and keeps per-step results.
type TestOrchestrator struct {
	config    *TestConfig
	logger    *logrus.Logger
	startTime time.Time
	results   *TestResults
}

// TestConfig holds configuration for the entire run.
type TestConfig struct {
	WorkDir string

	// Timeout configuration
	OverallTimeout time.Duration
	MessageTimeout time.Duration
	SilenceWait    time.Duration
	EchoDebounce   time.Duration

	// Logging configuration
	LogLevel      string
	LogFile       string
	VerboseOutput bool
}

// TestResults holds the outcomes of a run.
type TestResults struct {
	TotalTests    int
	PassedTests   int
	FailedTests   int
	SkippedTests  int
	FramesSent    int
	ExecutionTime time.Duration
	TestSteps     []TestStepResult
	FinalStatus   TestStatus
	ErrorDetails  string
}

// TestStepResult is the result of one scenario step.
type TestStepResult struct {
	StepName      string
	Status        TestStatus
	ExecutionTime time.Duration
	ErrorMessage  string
}

// TestStatus is the status of a run or step.
type TestStatus int

const (
	TestStatusPending TestStatus = iota
	TestStatusRunning
	TestStatusPassed
	TestStatusFailed
	TestStatusSkipped
	TestStatusTimeout
)

func (ts TestStatus) String() string {
	switch ts {
	case TestStatusPending:
		return "PENDING"
	case TestStatusRunning:
		return "RUNNING"
	case TestStatusPassed:
		return "PASSED"
	case TestStatusFailed:
		return "FAILED"
	case TestStatusSkipped:
		return "SKIPPED"
	case TestStatusTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// DefaultTestConfig returns the default run configuration.
func DefaultTestConfig() *TestConfig {
	return &TestConfig{
		OverallTimeout: time.Minute,
		MessageTimeout: 2 * time.Second,
		SilenceWait:    100 * time.Millisecond,
		EchoDebounce:   5 * time.Second,
		LogLevel:       "info",
		VerboseOutput:  true,
	}
}

// NewTestOrchestrator creates an orchestrator logging to stdout or to
// config.LogFile.
func NewTestOrchestrator(config *TestConfig) (*TestOrchestrator, error) {
	if config == nil {
		config = DefaultTestConfig()
	}

	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)

	if config.LogFile != "" {
		logFile, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetOutput(logFile)
	}

	return &TestOrchestrator{
		config: config,
		logger: logger,
		results: &TestResults{
			TestSteps:   make([]TestStepResult, 0),
			FinalStatus: TestStatusPending,
		},
	}, nil
}

// RunTests executes every scenario step, stopping at the first failure.
func (to *TestOrchestrator) RunTests(ctx context.Context) (*TestResults, error) {
	to.startTime = time.Now()
	to.results.FinalStatus = TestStatusRunning

	to.logger.Info("🧪 voxchatter over-the-air scenario")
	to.logger.Infof("⏰ Started at %s", to.startTime.Format(time.RFC3339))
	if to.config.VerboseOutput {
		to.logConfiguration()
	}

	runCtx, cancel := context.WithTimeout(ctx, to.config.OverallTimeout)
	defer cancel()

	scenario := NewScenario(&ScenarioConfig{
		WorkDir:        to.config.WorkDir,
		MessageTimeout: to.config.MessageTimeout,
		SilenceWait:    to.config.SilenceWait,
		EchoDebounce:   to.config.EchoDebounce,
		Logger:         to.logger.WithField("component", "scenario"),
	})
	defer func() {
		if err := scenario.Cleanup(); err != nil {
			to.logger.Warnf("⚠️  Cleanup warning: %v", err)
		}
	}()

	var runErr error
	for _, step := range scenario.Steps() {
		to.results.TotalTests++
		if runErr != nil {
			to.recordSkipped(step.Name)
			continue
		}
		if err := runCtx.Err(); err != nil {
			runErr = fmt.Errorf("%s: %w", step.Name, err)
			to.results.FinalStatus = TestStatusTimeout
			to.recordSkipped(step.Name)
			continue
		}
		if err := to.executeWithStepTracking(step.Name, func() error { return step.Run(runCtx) }); err != nil {
			runErr = fmt.Errorf("%s: %w", step.Name, err)
		}
	}

	to.results.ExecutionTime = time.Since(to.startTime)
	to.results.FramesSent = len(scenario.DeliveryLog())

	switch {
	case runErr == nil:
		to.results.FinalStatus = TestStatusPassed
	case to.results.FinalStatus != TestStatusTimeout:
		to.results.FinalStatus = TestStatusFailed
	}
	if runErr != nil {
		to.results.ErrorDetails = runErr.Error()
	}

	to.generateFinalReport()
	return to.results, runErr
}

// executeWithStepTracking executes a step and records its result.
func (to *TestOrchestrator) executeWithStepTracking(stepName string, operation func() error) error {
	stepStart := time.Now()
	to.logger.Infof("🎯 Executing: %s", stepName)

	stepResult := TestStepResult{StepName: stepName, Status: TestStatusRunning}
	err := operation()
	stepResult.ExecutionTime = time.Since(stepStart)

	if err != nil {
		stepResult.Status = TestStatusFailed
		stepResult.ErrorMessage = err.Error()
		to.results.FailedTests++
		to.logger.Errorf("❌ %s failed: %v", stepName, err)
	} else {
		stepResult.Status = TestStatusPassed
		to.results.PassedTests++
		to.logger.Infof("✅ %s completed in %v", stepName, stepResult.ExecutionTime)
	}

	to.results.TestSteps = append(to.results.TestSteps, stepResult)
	return err
}

func (to *TestOrchestrator) recordSkipped(stepName string) {
	to.results.SkippedTests++
	to.results.TestSteps = append(to.results.TestSteps, TestStepResult{
		StepName: stepName,
		Status:   TestStatusSkipped,
	})
}

func (to *TestOrchestrator) logConfiguration() {
	to.logger.Info("📋 Configuration:")
	to.logger.Infof("   Overall timeout: %v", to.config.OverallTimeout)
	to.logger.Infof("   Message timeout: %v", to.config.MessageTimeout)
	to.logger.Infof("   Silence wait: %v", to.config.SilenceWait)
	to.logger.Infof("   Echo debounce: %v", to.config.EchoDebounce)
	if to.config.WorkDir != "" {
		to.logger.Infof("   Work dir: %s", to.config.WorkDir)
	}
}

func (to *TestOrchestrator) generateFinalReport() {
	r := to.results
	to.logger.Info("📊 Test Execution Summary")
	to.logger.Infof("🎯 Overall Status: %s", r.FinalStatus)
	to.logger.Infof("⏱️  Total Execution Time: %v", r.ExecutionTime)
	to.logger.Infof("📈 Steps: %d total, %d passed, %d failed, %d skipped",
		r.TotalTests, r.PassedTests, r.FailedTests, r.SkippedTests)
	to.logger.Infof("📡 Frames sent: %d", r.FramesSent)

	for _, step := range r.TestSteps {
		to.logger.Infof("   %s %s (%v)", statusIcon(step.Status), step.StepName, step.ExecutionTime)
		if step.ErrorMessage != "" {
			to.logger.Infof("      Error: %s", step.ErrorMessage)
		}
	}

	if r.FinalStatus == TestStatusPassed {
		to.logger.Info("🎉 All steps completed successfully!")
	} else {
		to.logger.Warn("⚠️  Run completed with failures")
	}
	to.logger.Infof("🏁 Completed at %s", time.Now().Format(time.RFC3339))
	to.logger.Info(strings.Repeat("=", 50))
}

func statusIcon(status TestStatus) string {
	switch status {
	case TestStatusFailed, TestStatusTimeout:
		return "❌"
	case TestStatusSkipped:
		return "⏭️"
	default:
		return "✅"
	}
}

// GetResults returns the current results.
func (to *TestOrchestrator) GetResults() *TestResults {
	return to.results
}

// ValidateConfiguration validates the run configuration.
func (to *TestOrchestrator) ValidateConfiguration() error {
	if to.config.OverallTimeout <= 0 {
		return fmt.Errorf("overall timeout must be positive")
	}
	if to.config.MessageTimeout <= 0 {
		return fmt.Errorf("message timeout must be positive")
	}
	if to.config.SilenceWait <= 0 {
		return fmt.Errorf("silence wait must be positive")
	}
	if to.config.EchoDebounce <= 0 {
		return fmt.Errorf("echo debounce must be positive: the scenario checks echo suppression")
	}
	return nil
}

// SetLogOutput sets where the orchestrator logs.
func (to *TestOrchestrator) SetLogOutput(output io.Writer) {
	to.logger.SetOutput(output)
}

// SetVerbose enables or disables logging of the configuration.
func (to *TestOrchestrator) SetVerbose(verbose bool) {
	to.config.VerboseOutput = verbose
}
