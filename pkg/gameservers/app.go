package gameservers

import (
	"github.com/talves/gameservers/pkg/config"
	"github.com/talves/gameservers/pkg/infra/cloudformation"
	"github.com/talves/gameservers/pkg/stack"
)

const PARENT_STACK_NAME = "GameServers"

// GameServersApp is the parent stack holding the server nested stacks, and the base stack they share.
type GameServersApp struct {
	*stack.App

	Parent    *stack.Stack
	Base      *BaseStack
	Minecraft *Server
}

func NewGameServersApp(cfg config.Config) (*GameServersApp, error) {
	format, err := cloudformation.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	app := &GameServersApp{
		App: stack.NewApp(stack.AppOptions{AssetBucket: cfg.AssetBucket, Format: format}),
	}
	env := stack.Environment{Region: cfg.Region, Account: cfg.Account}

	if app.Parent, err = app.NewStack(PARENT_STACK_NAME, "Game servers", env); err != nil {
		return nil, err
	}
	if app.Base, err = NewBaseStack(app.App, env); err != nil {
		return nil, err
	}
	app.Minecraft, err = NewMinecraftServer(app.App, app.Parent, MINECRAFT_SERVER_NAME, MinecraftServerProps{
		Description: "Minecraft server",
		Network:     app.Base.Network,
		FileSystem:  app.Base.FileSystem,
		Repository:  app.Base.Repository,
		ImageTag:    cfg.Minecraft.ImageTag,
		TaskDefinition: TaskDefinitionProps{
			Cpu:            cfg.Minecraft.Cpu,
			MemoryLimitMiB: cfg.Minecraft.Memory,
		},
		EnvironmentFile:    cfg.Minecraft.EnvironmentFile,
		CreateLoadBalancer: cfg.Minecraft.LoadBalancer,
	})
	if err != nil {
		return nil, err
	}
	if err := app.Parent.AddDependency(app.Base.Stack); err != nil {
		return nil, err
	}
	return app, nil
}
