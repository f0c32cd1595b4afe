package main

import (
	"github.com/reusee/dscope"

	"github.com/Urethramancer/asm14/assembler"
	"github.com/Urethramancer/asm14/configs"
	"github.com/Urethramancer/asm14/logs"
)

type Module struct {
	dscope.Module
	Configs configs.Module
}

func (Module) Assembler(
	settings configs.Settings,
	logger logs.Logger,
) *assembler.Assembler {
	return assembler.New(settings.CodeStart, logger)
}
