package aws

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizers(t *testing.T) {
	tests := []struct {
		name  string
		apply func(string) string
		input string
		want  string
	}{
		{
			name:  "role keeps allowed punctuation",
			apply: IamRoleSanitizer.Apply,
			input: "MinecraftTaskRole",
			want:  "MinecraftTaskRole",
		},
		{
			name:  "role replaces spaces",
			apply: IamRoleSanitizer.Apply,
			input: "Minecraft Task/Role",
			want:  "Minecraft_Task_Role",
		},
		{
			name:  "role is truncated",
			apply: IamRoleSanitizer.Apply,
			input: strings.Repeat("a", 70),
			want:  strings.Repeat("a", 64),
		},
		{
			name:  "security group keeps spaces",
			apply: SecurityGroupSanitizer.Apply,
			input: "Minecraft EFS",
			want:  "Minecraft EFS",
		},
		{
			name:  "security group cannot start with sg-",
			apply: SecurityGroupSanitizer.Apply,
			input: "sg-minecraft",
			want:  "minecraft",
		},
		{
			name:  "load balancer",
			apply: LoadBalancerSanitizer.Apply,
			input: "internal_Minecraft.Server_",
			want:  "Minecraft-Server",
		},
		{
			name:  "target group is truncated",
			apply: TargetGroupSanitizer.Apply,
			input: strings.Repeat("b", 40),
			want:  strings.Repeat("b", 32),
		},
		{
			name:  "ecs service",
			apply: EcsServiceSanitizer.Apply,
			input: "Minecraft Server!",
			want:  "MinecraftServer",
		},
		{
			name:  "dashboard",
			apply: DashboardSanitizer.Apply,
			input: "Minecraft Server",
			want:  "Minecraft_Server",
		},
		{
			name:  "ecr repository is lowercase",
			apply: EcrRepositoryName,
			input: "Minecraft Server",
			want:  "minecraft-server",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.apply(tt.input))
		})
	}
}
