// Package ai answers interrogation questions in character for suspects that
// no player controls.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/myrjola/whodunit/internal/errors"
	"github.com/myrjola/whodunit/internal/models"
	"github.com/myrjola/whodunit/internal/repositories"
	"github.com/sashabaranov/go-openai"
)

const maxTokens = 256

// Answerer generates suspect replies with a chat completion model. The
// persona prompt is rebuilt per question from the case file so that reseeding
// a case takes effect immediately.
type Answerer struct {
	client *openai.Client
	cases  *repositories.CaseRepository
	logger *slog.Logger
}

func NewAnswerer(cases *repositories.CaseRepository, logger *slog.Logger) *Answerer {
	return &Answerer{
		client: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
		cases:  cases,
		logger: logger.With("source", "Answerer"),
	}
}

func (a *Answerer) AutomatedAnswer(ctx context.Context, character, question, caseRef string) (string, error) {
	prompt, err := a.personaPrompt(ctx, character, caseRef)
	if err != nil {
		return "", err
	}

	completion, err := a.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     openai.GPT3Dot5Turbo1106,
			MaxTokens: maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: prompt},
				{Role: openai.ChatMessageRoleUser, Content: question},
			},
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion",
			slog.String("character", character))
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}

	answer := strings.TrimSpace(completion.Choices[0].Message.Content)
	if answer == "" {
		return "", errors.New("completion returned an empty answer")
	}
	return answer, nil
}

// personaPrompt assembles the in-character instructions for a suspect. The
// prompt never reveals who the culprit is, so the model can only deflect the
// way an innocent, or a lying, suspect would.
func (a *Answerer) personaPrompt(ctx context.Context, character, caseRef string) (string, error) {
	c, err := a.cases.Case(ctx, caseRef)
	if err != nil {
		return "", errors.Wrap(err, "read case for persona", slog.String("case_ref", caseRef))
	}
	suspect, err := a.cases.Suspect(ctx, caseRef, character)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Unknown to the case file but a valid game character. Answer
			// with a minimal persona rather than failing the question.
			suspect = &models.Suspect{Name: character}
		} else {
			return "", errors.Wrap(err, "read suspect for persona", slog.String("character", character))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a suspect being interrogated by a detective.\n", suspect.Name)
	fmt.Fprintf(&b, "The case: %s\n", c.Summary)
	if suspect.Occupation != "" {
		fmt.Fprintf(&b, "Your occupation: %s.\n", suspect.Occupation)
	}
	if suspect.Demeanor != "" {
		fmt.Fprintf(&b, "Your demeanor: %s.\n", suspect.Demeanor)
	}
	if suspect.Background != "" {
		fmt.Fprintf(&b, "Your background: %s\n", suspect.Background)
	}
	if alibi := a.alibiFor(ctx, caseRef, suspect.Name); alibi != nil {
		fmt.Fprintf(&b, "Your alibi: %s", alibi.Claim)
		if alibi.Corroborated {
			b.WriteString(" Another witness backs this up.")
		}
		b.WriteString("\n")
	}
	b.WriteString("Answer the detective's question in one or two sentences, in character. " +
		"Stay evasive about anything that would incriminate you and never break character " +
		"or mention that you are part of a game.")
	return b.String(), nil
}

func (a *Answerer) alibiFor(ctx context.Context, caseRef, name string) *models.Alibi {
	alibis, err := a.cases.Alibis(ctx, caseRef)
	if err != nil {
		a.logger.WarnContext(ctx, "could not read alibis for persona", errors.SlogError(err))
		return nil
	}
	for i := range alibis {
		if alibis[i].SuspectName == name {
			return &alibis[i]
		}
	}
	return nil
}
