// Package ai is the admin assistant: a Gemini model that may answer
// questions by running read-only SQL against the replica pool.
package ai

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

const toolName = "run_readonly_sql"

// maxToolCalls bounds the function-calling loop of one question.
const maxToolCalls = 5

// Answer is the assistant's reply to one question.
type Answer struct {
	Text        string   `json:"response"`
	TotalTokens int      `json:"totalTokens"`
	Queries     []string `json:"queries,omitempty"`
}

// Service holds the Gemini client and the read-only database connection.
type Service struct {
	client  *genai.Client
	db      *sql.DB
	dialect string
	model   string
	logger  *slog.Logger
}

// NewService initialises the Gemini client. db should be the read-only pool.
func NewService(ctx context.Context, apiKey, model string, db *sql.DB, dialect string, logger *slog.Logger) (*Service, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Service{client: client, db: db, dialect: dialect, model: model, logger: logger}, nil
}

// Close releases the Gemini client.
func (s *Service) Close() error {
	return s.client.Close()
}

// Ask answers message for a staff member with the given role.
func (s *Service) Ask(ctx context.Context, message, role string) (*Answer, error) {
	// 1. Configure the model with our single SQL tool.
	model := s.client.GenerativeModel(s.model)
	model.Tools = []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        toolName,
			Description: "Executes one READ-ONLY SQL SELECT statement and returns the rows as JSON.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"query": {
						Type:        genai.TypeString,
						Description: fmt.Sprintf("A single %s SELECT statement.", s.dialect),
					},
				},
				Required: []string{"query"},
			},
		}},
	}}
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt(role, s.dialect))},
	}

	// 2. Send the question.
	cs := model.StartChat()
	res, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return nil, fmt.Errorf("error sending message: %w", err)
	}

	answer := &Answer{}
	for calls := 0; ; calls++ {
		if res.UsageMetadata != nil {
			answer.TotalTokens = int(res.UsageMetadata.TotalTokenCount)
		}
		if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
			answer.Text = "No response."
			return answer, nil
		}

		// 3. Plain text ends the conversation.
		part := res.Candidates[0].Content.Parts[0]
		call, ok := part.(genai.FunctionCall)
		if !ok {
			answer.Text = fmt.Sprintf("%v", part)
			return answer, nil
		}
		if call.Name != toolName {
			return nil, fmt.Errorf("unknown function: %s", call.Name)
		}
		if calls >= maxToolCalls {
			return nil, fmt.Errorf("assistant exceeded %d queries", maxToolCalls)
		}

		// 4. Run the requested query and hand the rows back.
		query, _ := call.Args["query"].(string)
		answer.Queries = append(answer.Queries, query)
		s.logger.InfoContext(ctx, "assistant running sql", "query", query)

		result, err := s.runReadOnlyQuery(ctx, query)
		if err != nil {
			result = fmt.Sprintf("SQL Error: %v", err)
		}
		res, err = cs.SendMessage(ctx, genai.FunctionResponse{
			Name:     toolName,
			Response: map[string]any{"result": result},
		})
		if err != nil {
			return nil, fmt.Errorf("tool response error: %w", err)
		}
	}
}

func systemPrompt(role, dialect string) string {
	return fmt.Sprintf(`You are the Relique back-office assistant, talking to a user with role %q.
You can query the %s database with %s.
Schema:
%s
Rules: one SELECT per call, never modify data, be concise, quote numbers from query results.`,
		role, dialect, toolName, schemaDefinition)
}

// schemaDefinition describes the tables the assistant may read.
const schemaDefinition = `
- users (id, email, full_name, phone_number, role [client, editor, admin], status [active, suspended], created_at)
- marketplace_items (id, seller_id, title, slug, description, price, currency, status [draft, pending, published, suspended, unpublished, archived], category, brand, coa_code, created_at, published_at)
- submissions (id, user_id, kind [consign, authenticate, contact], status [new, in_review, closed], name, email, details, admin_note, created_at)
- verify_records (id, code, product_name, signatures, result [qualified, inconclusive, disqualified], lookups, created_at)
- activity_events (id, user_id, action, entity_type, entity_id, summary, created_at)
- audit_logs (id, actor_id, action, entity_type, entity_id, from_status, to_status, created_at)
- favorites (user_id, listing_id, created_at)
- saved_views (id, user_id, name, scope, created_at)
- search_history (id, user_id, query, created_at)
- posts (id, author_id, title, slug, status [draft, published], published_at)
- events (id, author_id, title, slug, location, status, starts_at, ends_at)
- settings (setting_key, setting_value, description)
- notifications (id, user_id, message, is_read, created_at)
`
