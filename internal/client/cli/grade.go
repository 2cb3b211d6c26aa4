package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/notelink/notelink/internal/grading"
	"github.com/notelink/notelink/internal/validation"
	"github.com/notelink/notelink/pkg/api"
)

// newGrader подменяется в тестах
var newGrader = func(apiKey string) grader {
	return grading.NewService(apiKey)
}

type grader interface {
	Grade(ctx context.Context, req grading.Request) (*grading.Result, error)
}

// runGrade проверяет ответ через языковую модель и при указании
// комнаты сохраняет результат на сервере
func (c *Cli) runGrade(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("grade", flag.ContinueOnError)
	roomID := flags.String("room", "", "room id to store the result in")
	question := flags.String("question", "", "the question being answered")
	modelAnswer := flags.String("model-answer", "", "reference answer")
	answer := flags.String("answer", "", "the answer to grade")
	rubric := flags.String("rubric", "", "optional grading rubric")
	maxScore := flags.Float64("max-score", 10, "maximum score")
	mode := flags.String("mode", "review", "return mode: review or auto")
	page := flags.Int("page", 1, "page the answer belongs to")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *question == "" || *answer == "" {
		return fmt.Errorf("both -question and -answer are required")
	}
	if *mode != "review" && *mode != "auto" {
		return fmt.Errorf("mode must be review or auto")
	}
	if *roomID != "" {
		if err := validation.ValidateRoomID(*roomID); err != nil {
			return err
		}
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		var err error
		apiKey, err = c.io.ReadPassword("Gemini API key: ")
		if err != nil {
			return fmt.Errorf("failed to read api key: %w", err)
		}
		if apiKey == "" {
			return fmt.Errorf("api key cannot be empty")
		}
	}

	result, err := newGrader(apiKey).Grade(ctx, grading.Request{
		Question:    *question,
		ModelAnswer: *modelAnswer,
		Answer:      *answer,
		Rubric:      *rubric,
		MaxScore:    *maxScore,
	})
	if err != nil {
		return fmt.Errorf("grading failed: %w", err)
	}

	if result.Score != nil {
		c.io.Printf("Score: %.1f / %.1f\n", *result.Score, *maxScore)
	} else {
		c.io.Println("Score: not determined")
	}
	if result.Feedback != "" {
		c.io.Printf("Feedback: %s\n", result.Feedback)
	}

	if *roomID == "" {
		return nil
	}

	auth, err := c.authService.EnsureActor(ctx)
	if err != nil {
		return err
	}

	resp, err := c.apiClient.SubmitGrade(ctx, auth.AccessToken, *roomID, api.SubmissionRequest{
		Question:    *question,
		ModelAnswer: *modelAnswer,
		Answer:      *answer,
		Feedback:    result.Feedback,
		Mode:        *mode,
		Score:       result.Score,
		MaxScore:    *maxScore,
		Page:        *page,
	})
	if err != nil {
		return fmt.Errorf("failed to store submission: %w", err)
	}

	c.io.Printf("Submission stored: %s\n", resp.ID)

	return nil
}
