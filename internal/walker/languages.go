package walker

import "strings"

// languageByExtension maps file extensions and exact filenames to the
// language identifier used throughout the pipeline (spec §4.2).
var languageByExtension = map[string]string{
	".go": "go",

	".js":  "javascript",
	".jsx": "javascript",
	".mjs": "javascript",
	".ts":  "typescript",
	".tsx": "typescript",

	".py":  "python",
	".pyw": "python",
	".pyi": "python",

	".html": "html",
	".htm":  "html",
	".css":  "css",
	".scss": "scss",
	".sass": "sass",
	".less": "less",

	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
	".xml":  "xml",
	".ini":  "ini",

	".md":       "markdown",
	".mdx":      "markdown",
	".markdown": "markdown",
	".rst":      "rst",
	".txt":      "text",

	".sh":   "shell",
	".bash": "shell",
	".zsh":  "shell",

	".rb": "ruby",
	".rs": "rust",

	".java": "java",
	".kt":   "kotlin",
	".kts":  "kotlin",

	".c":   "c",
	".h":   "c",
	".cpp": "cpp",
	".hpp": "cpp",
	".cc":  "cpp",
	".cxx": "cpp",

	".cs":    "csharp",
	".swift": "swift",
	".php":   "php",

	"Dockerfile":  "dockerfile",
	"Makefile":    "makefile",
	"makefile":    "makefile",
	"GNUmakefile": "makefile",
}

// structuredLanguages are languages dispatched to the Structured Parser
// (full syntactic parse). Everything else with a recognised "code"
// language falls to the Pattern Parser.
var structuredLanguages = map[string]bool{
	"python": true,
}

// curlyBraceLanguages are languages dispatched to the Pattern Parser.
var curlyBraceLanguages = map[string]bool{
	"go": true, "javascript": true, "typescript": true, "java": true,
	"kotlin": true, "c": true, "cpp": true, "csharp": true, "swift": true,
	"php": true, "rust": true,
}

// DetectLanguage returns the language identifier for path, or "" if
// the extension/filename is not recognised.
func DetectLanguage(path string) string {
	base := baseName(path)
	if lang, ok := languageByExtension[base]; ok {
		return lang
	}
	if ext := extension(base); ext != "" {
		if lang, ok := languageByExtension[ext]; ok {
			return lang
		}
	}
	return ""
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

func extension(base string) string {
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[i:]
	}
	return ""
}
