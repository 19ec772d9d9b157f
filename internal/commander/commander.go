package commander

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"mlsentiment/internal/data"
	"mlsentiment/internal/evaluation"
	"mlsentiment/internal/history"
	"mlsentiment/internal/persistence"
	"mlsentiment/internal/pipeline"
)

const maxInputLine = 1 << 20

// Backend trains and loads models. The CLI never touches the featurizer or
// classifier directly.
type Backend interface {
	Train(ctx context.Context, trainPath string) (pipeline.TrainedModel, error)
	Fit(ctx context.Context, examples []data.LabeledExample) (pipeline.TrainedModel, error)
	Load(path string) (pipeline.TrainedModel, error)
}

type RunRecorder interface {
	Record(ctx context.Context, run *history.Run) error
}

// Request carries answers supplied up front; empty fields are prompted for.
type Request struct {
	TrainPath string
	TestPath  string
	ModelPath string
	Text      string
}

type Options struct {
	In                   io.Reader
	Out                  io.Writer
	Err                  io.Writer
	Logger               *zap.Logger
	History              RunRecorder
	CrossValidationFolds int
	BatchSize            int
}

type Commander struct {
	backend   Backend
	evaluator *evaluation.Evaluator
	cvFolds   int
	history   RunRecorder
	logger    *zap.Logger
	scanner   *bufio.Scanner
	out       io.Writer
	errOut    io.Writer

	red    func(a ...any) string
	yellow func(a ...any) string
	cyan   func(a ...any) string
}

func NewCommander(backend Backend, opts Options) *Commander {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	scanner := bufio.NewScanner(opts.In)
	scanner.Buffer(make([]byte, 0, 64*1024), maxInputLine)

	return &Commander{
		backend:   backend,
		evaluator: evaluation.NewEvaluator(opts.BatchSize, opts.Logger),
		cvFolds:   opts.CrossValidationFolds,
		history:   opts.History,
		logger:    opts.Logger,
		scanner:   scanner,
		out:       opts.Out,
		errOut:    opts.Err,
		red:       color.New(color.FgRed).SprintFunc(),
		yellow:    color.New(color.FgYellow).SprintFunc(),
		cyan:      color.New(color.FgCyan).SprintFunc(),
	}
}

func (c *Commander) Run(ctx context.Context, action Action, req Request) error {
	run := history.NewRun(action.String())
	run.SetStatus(history.RunRunning)

	var err error
	switch action {
	case ActionTrain:
		err = c.Train(ctx, req, run)
	case ActionPredict:
		err = c.Predict(ctx, req, run)
	default:
		return &UsageError{Args: []string{action.String()}}
	}

	if err != nil {
		run.SetError(err)
	} else {
		run.SetStatus(history.RunCompleted)
	}
	c.record(ctx, run)

	return err
}

func (c *Commander) Train(ctx context.Context, req Request, run *history.Run) error {
	trainPath, err := c.promptPath("Enter path to training data file followed by <Enter>:", req.TrainPath)
	if err != nil {
		return err
	}
	testPath, err := c.promptPath("Enter path to testing data file followed by <Enter>:", req.TestPath)
	if err != nil {
		return err
	}
	modelPath, err := c.promptPath("Enter path to model file <Enter>:", req.ModelPath)
	if err != nil {
		return err
	}

	if run != nil {
		run.TrainPath, run.TestPath, run.ModelPath = trainPath, testPath, modelPath
	}

	created, err := persistence.EnsureWritable(modelPath)
	if err != nil {
		return err
	}
	c.logger.Debug("model path ready", zap.String("path", modelPath), zap.Bool("created", created))

	model, err := c.backend.Train(ctx, trainPath)
	if err != nil {
		if created {
			os.Remove(modelPath)
		}
		return err
	}

	if err := model.Save(modelPath); err != nil {
		if created {
			os.Remove(modelPath)
		}
		return fmt.Errorf("failed to save model: %w", err)
	}
	c.logger.Info("model saved", zap.String("path", modelPath))

	fmt.Fprintln(c.out, "Model saved, starting evaluation . . .")

	metrics, err := c.evaluator.EvaluateFile(ctx, model, data.NewTextLoader(testPath))
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, metrics.Report())

	if run != nil {
		run.Accuracy, run.AUC, run.F1Score = metrics.Accuracy, metrics.AUC, metrics.F1Score
	}

	if c.cvFolds >= 2 {
		if err := c.crossValidate(ctx, trainPath); err != nil {
			return err
		}
	}

	return nil
}

func (c *Commander) crossValidate(ctx context.Context, trainPath string) error {
	examples, err := data.NewTextLoader(trainPath).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load training data: %w", err)
	}

	cv := evaluation.NewCrossValidator(c.cvFolds, true, c.evaluator)
	result, err := cv.CrossValidate(ctx, examples, func(ctx context.Context, train []data.LabeledExample) (evaluation.Predictor, error) {
		return c.backend.Fit(ctx, train)
	})
	if err != nil {
		return fmt.Errorf("cross-validation failed: %w", err)
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.cyan(fmt.Sprintf("Cross-validation (%d folds)", len(result.Folds))))
	fmt.Fprintln(c.out, strings.Repeat("-", 42))
	for i, fold := range result.Folds {
		fmt.Fprintf(c.out, "Fold %d: Accuracy %s | Auc %s | F1Score %s\n", i+1,
			evaluation.FormatPercent(fold.Accuracy),
			evaluation.FormatPercent(fold.AUC),
			evaluation.FormatPercent(fold.F1Score))
	}
	fmt.Fprintf(c.out, "Mean accuracy: %s ± %s\n",
		evaluation.FormatPercent(result.MeanAccuracy),
		evaluation.FormatPercent(result.StdAccuracy))

	return nil
}

func (c *Commander) Predict(ctx context.Context, req Request, run *history.Run) error {
	text := req.Text
	if text == "" {
		line, err := c.prompt("Enter text to analyze for sentiment followed by <Enter>:")
		if err != nil {
			return err
		}
		text = line
	}

	modelPath, err := c.promptPath("Enter path to model file <Enter>:", req.ModelPath)
	if err != nil {
		return err
	}
	if run != nil {
		run.ModelPath = modelPath
	}

	model, err := c.backend.Load(modelPath)
	if err != nil {
		return fmt.Errorf("failed to load model %s: %w", modelPath, err)
	}

	prediction, err := model.Predict(text)
	if err != nil {
		return err
	}
	c.logger.Debug("prediction",
		zap.Bool("label", prediction.PredictedLabel),
		zap.Float64("score", prediction.Score),
		zap.Float64("probability", prediction.Probability))

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Sentiment Prediction")
	fmt.Fprintln(c.out, "---------------------")
	fmt.Fprintf(c.out, "Sentiment: %s | Prediction: %s\n", text, prediction)
	fmt.Fprintln(c.out)

	return nil
}

func (c *Commander) prompt(message string) (string, error) {
	fmt.Fprintln(c.out, c.yellow(message))

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", fmt.Errorf("failed to read input: %w", io.ErrUnexpectedEOF)
	}
	return strings.TrimRight(c.scanner.Text(), "\r"), nil
}

func (c *Commander) promptPath(message, preset string) (string, error) {
	if preset != "" {
		return preset, nil
	}

	path, err := c.prompt(message)
	if err != nil {
		return "", err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("no path entered")
	}
	return path, nil
}

func (c *Commander) record(ctx context.Context, run *history.Run) {
	if c.history == nil {
		return
	}
	if err := c.history.Record(ctx, run); err != nil {
		c.logger.Warn("failed to record run", zap.String("run", run.ID), zap.Error(err))
		return
	}
	c.logger.Debug("run recorded", zap.String("run", run.ID), zap.String("status", string(run.Status)))
}

// ReportError prints a fatal error to the error stream.
func (c *Commander) ReportError(err error) {
	fmt.Fprintf(c.errOut, "%s %v\n", c.red("✗"), err)
	if errors.Is(err, persistence.ErrIncompatibleModel) || errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(c.errOut, "Ensure the model file exists and was written by the train command")
	}
}
