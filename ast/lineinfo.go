package ast

type LineInfo struct {
	LineNumber int
}

func (li LineInfo) GetLineInfo() LineInfo {
	return li
}

func (li LineInfo) Line() int {
	return li.LineNumber
}

type Node interface {
	GetLineInfo() LineInfo
}
