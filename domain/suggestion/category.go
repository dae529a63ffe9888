// Package suggestion maps a free-text request to the tools most likely to
// serve it, using fixed keyword tables rather than a learned model.
package suggestion

import "strings"

// Tool names suggested by the default category table.
const (
	ToolWebSearch     = "web_search"
	ToolBrowserUse    = "browser_use"
	ToolPythonExecute = "python_execute"
	ToolCalculator    = "calculator"
	ToolTerminate     = "terminate"
)

// Category is one row of the keyword table.
type Category struct {
	// Name identifies the category (search, browser, code, file).
	Name string

	// Keywords are literal lower-case substrings that select the category.
	Keywords []string

	// Tool is the tool suggested when the category matches.
	Tool string
}

// Matches reports whether any keyword occurs in the lower-cased text.
func (c Category) Matches(lowered string) bool {
	for _, kw := range c.Keywords {
		if kw != "" && strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// DefaultCategories returns the built-in table in priority order.
// Keywords are bilingual; Chinese and English terms map to the same tool.
func DefaultCategories() []Category {
	return []Category{
		{
			Name:     "search",
			Keywords: []string{"搜索", "查找", "了解", "信息", "寻找", "search", "find", "look up"},
			Tool:     ToolWebSearch,
		},
		{
			Name:     "browser",
			Keywords: []string{"网站", "网页", "浏览", "访问", "网址", "url", "website", "browser"},
			Tool:     ToolBrowserUse,
		},
		{
			Name:     "code",
			Keywords: []string{"代码", "编程", "运行", "执行", "计算", "code", "program", "execute", "calculate"},
			Tool:     ToolPythonExecute,
		},
		{
			Name:     "file",
			Keywords: []string{"文件", "保存", "读取", "表格", "file", "save", "read", "excel"},
			Tool:     ToolPythonExecute,
		},
	}
}
