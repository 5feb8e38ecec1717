package ai

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/codeWithUali/laradoc/internal/analyzer/laravel"
)

// documentationChecklist is the list of topics requested for every module
var documentationChecklist = []string{
	"Overview and purpose of the application",
	"Architecture and structure",
	"Database schema and relationships",
	"API endpoints and their functionality",
	"Authentication and authorization",
	"Business logic and workflows",
	"Frontend components and views",
	"Configuration and environment setup",
	"Deployment and maintenance",
}

// BuildDocumentationPrompt builds the prompt for one documentation module
func BuildDocumentationPrompt(req DocumentationRequest) string {
	var b strings.Builder

	b.WriteString("You are an expert Laravel developer and technical writer. ")
	b.WriteString("Please analyze the following Laravel project structure and generate comprehensive documentation. ")
	if req.Module != "" {
		fmt.Fprintf(&b, "Focus specifically on the '%s' module. ", req.Module)
	}

	var info laravel.ProjectInfo
	if req.Analysis != nil {
		info = req.Analysis.ProjectInfo
	}
	b.WriteString("\n\nProject Information:\n")
	b.WriteString(prettyJSON(info))

	if req.Analysis != nil && req.Module != "" {
		if group, ok := req.Analysis.Modules[req.Module]; ok {
			b.WriteString("\n\nModule Information:\n")
			b.WriteString(prettyJSON(group))
		}
	}

	if !isEmpty(req.Data) {
		b.WriteString("\n\nModule Data:\n")
		b.WriteString(prettyJSON(req.Data))
	}

	b.WriteString("\n\nPlease generate documentation that includes:\n")
	for i, topic := range documentationChecklist {
		fmt.Fprintf(&b, "%d. %s\n", i+1, topic)
	}
	b.WriteString("\n\nFormat the response as structured markdown with proper headings, code blocks, and examples.")

	return b.String()
}

// BuildChatPrompt builds the user turn of a chat completion
func BuildChatPrompt(message string, chatContext interface{}) string {
	var b strings.Builder

	if !isEmpty(chatContext) {
		b.WriteString("Context from project documentation:\n")
		b.WriteString(prettyJSON(chatContext))
		b.WriteString("\n\n")
	}

	b.WriteString("User Question: ")
	b.WriteString(message)
	b.WriteString("\n\n")
	b.WriteString("Please provide a helpful and accurate response based on the project documentation and context provided.")

	return b.String()
}

// FallbackDocumentation assembles documentation straight from the analysis
// when no provider answer is available
func FallbackDocumentation(analysis *laravel.ProjectAnalysis, module string) string {
	if analysis == nil {
		analysis = &laravel.ProjectAnalysis{}
	}
	info := analysis.ProjectInfo

	var b strings.Builder
	b.WriteString("# Laravel Project Documentation\n\n")

	b.WriteString("## Project Overview\n\n")
	fmt.Fprintf(&b, "**Name:** %s\n", orDefault(info.Name, laravel.DefaultProjectName))
	fmt.Fprintf(&b, "**Description:** %s\n", orDefault(info.Description, "No description available"))
	fmt.Fprintf(&b, "**Laravel Version:** %s\n", orDefault(info.LaravelVersion, "Unknown"))
	fmt.Fprintf(&b, "**PHP Version:** %s\n\n", orDefault(info.PHPVersion, "Unknown"))

	if group, ok := analysis.Modules[module]; ok && module != "" {
		fmt.Fprintf(&b, "## Module: %s\n\n", cases.Title(language.English).String(module))
		b.WriteString("This module contains the following routes:\n\n")
		for _, route := range group.Routes {
			fmt.Fprintf(&b, "- **%s** `%s`\n", route.Method, route.URI)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("## Project Structure\n\n")

		if len(analysis.Controllers) > 0 {
			b.WriteString("### Controllers\n\n")
			for _, c := range analysis.Controllers {
				fmt.Fprintf(&b, "- %s\n", c.ShortName)
			}
			b.WriteString("\n")
		}

		if len(analysis.Models) > 0 {
			b.WriteString("### Models\n\n")
			for _, m := range analysis.Models {
				fmt.Fprintf(&b, "- %s (Table: %s)\n", m.ShortName, orDefault(m.Table, "unknown"))
			}
			b.WriteString("\n")
		}

		if len(analysis.APIEndpoints) > 0 {
			b.WriteString("### API Endpoints\n\n")
			for _, e := range analysis.APIEndpoints {
				fmt.Fprintf(&b, "- **%s** `%s`\n", e.Method, e.URI)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Note\n\n")
	b.WriteString("This is a fallback documentation generated when AI services are unavailable. ")
	b.WriteString("For more detailed and comprehensive documentation, please ensure your AI provider is properly configured.\n")

	return b.String()
}

func prettyJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// isEmpty reports nil values and empty maps, slices and strings
func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.String, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
