package chart

import "time"

// Annotator рисует прямоугольник паттерна на графике. Вызовы fire-and-forget:
// логика цикла от результата не зависит.
type Annotator interface {
	Draw(id int64, start, end time.Time, high, low float64)
	Remove(id int64)
}

type Nop struct{}

func (Nop) Draw(id int64, start, end time.Time, high, low float64) {}

func (Nop) Remove(id int64) {}
