package researchserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_sentinel/internal/engine"
	"github.com/anatolykoptev/go_sentinel/internal/engine/research"
	"github.com/anatolykoptev/go_sentinel/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Runner runs one research request.
type Runner interface {
	Run(ctx context.Context, topic, persona string) research.Result
}

// SourceLister lists the sources remembered for a topic.
type SourceLister interface {
	SeenURLs(ctx context.Context, topic string) ([]string, error)
}

var errTopicRequired = errors.New("topic is required")

// RegisterTools registers the research tools on the given MCP server:
// research, research_sources, research_personas.
func RegisterTools(server *mcp.Server, runner Runner, sources SourceLister) {
	h := &handlers{runner: runner, sources: sources}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "research",
		Description: "Research a topic on the web: discovers fresh sources (pages, YouTube videos, PDFs), summarizes each one and synthesizes a final report framed for a persona (default, marketing_manager, academic_researcher, financial_investor, content_creator). Reports are cached per topic and persona; repeated requests are served instantly. Returns the report and the list of source URLs used.",
	}, h.research)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "research_sources",
		Description: "List the source URLs remembered for a research topic, in the order they were first successfully read.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, h.seenSources)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "research_personas",
		Description: "List the personas a research report can be framed for, with the directive each one applies.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, h.personas)
}

type handlers struct {
	runner  Runner
	sources SourceLister
}

func (h *handlers) research(ctx context.Context, _ *mcp.CallToolRequest, input engine.ResearchInput) (*mcp.CallToolResult, engine.ResearchOutput, error) {
	topic := toolutil.NormTopic(input.Topic)
	if topic == "" {
		return nil, engine.ResearchOutput{}, errTopicRequired
	}
	persona := toolutil.NormPersona(input.Persona)

	slog.Info("research: request", slog.String("topic", topic), slog.String("persona", persona))
	res := h.runner.Run(ctx, topic, persona)
	return nil, engine.ResearchOutput{
		Report:  res.Report,
		Sources: toolutil.NonNil(res.Sources),
	}, nil
}

func (h *handlers) seenSources(ctx context.Context, _ *mcp.CallToolRequest, input engine.SeenSourcesInput) (*mcp.CallToolResult, engine.SeenSourcesOutput, error) {
	topic := toolutil.NormTopic(input.Topic)
	if topic == "" {
		return nil, engine.SeenSourcesOutput{}, errTopicRequired
	}
	urls, err := h.sources.SeenURLs(ctx, topic)
	if err != nil {
		return nil, engine.SeenSourcesOutput{}, fmt.Errorf("research_sources: %w", err)
	}
	urls = toolutil.NonNil(urls)
	return nil, engine.SeenSourcesOutput{Topic: topic, Total: len(urls), URLs: urls}, nil
}

func (h *handlers) personas(_ context.Context, _ *mcp.CallToolRequest, _ engine.PersonasInput) (*mcp.CallToolResult, engine.PersonasOutput, error) {
	names := research.Personas()
	out := engine.PersonasOutput{Personas: make([]engine.PersonaInfo, 0, len(names))}
	for _, name := range names {
		out.Personas = append(out.Personas, engine.PersonaInfo{
			Name:      name,
			Directive: research.Resolve(name).Text(),
		})
	}
	return nil, out, nil
}
