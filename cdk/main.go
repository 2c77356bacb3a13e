package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type LeagueStackProps struct {
	awscdk.StackProps
}

// NewLeagueStack deploys the API as one Lambda behind API Gateway. The
// database lives outside the stack; its DSN is read at synth time.
func NewLeagueStack(scope constructs.Construct, id string, props *LeagueStackProps) awscdk.Stack {
	var stackProps awscdk.StackProps
	if props != nil {
		stackProps = props.StackProps
	}

	stack := awscdk.NewStack(scope, &id, &stackProps)

	env := map[string]*string{
		"APP":          jsii.String("prod"),
		"POSTGRES_DSN": jsii.String(os.Getenv("POSTGRES_DSN")),
		"LOG_LEVEL":    jsii.String(envOr("LOG_LEVEL", "info")),
		"CORS_ORIGINS": jsii.String(envOr("CORS_ORIGINS", "*")),
	}
	for _, key := range []string{"LEAGUE_WIN_POINTS", "LEAGUE_DRAW_POINTS", "LEAGUE_LOSS_POINTS"} {
		if v := os.Getenv(key); v != "" {
			env[key] = jsii.String(v)
		}
	}

	lambdaFn := awslambda.NewFunction(stack, jsii.String("LeagueApi"), &awslambda.FunctionProps{
		Runtime:     awslambda.Runtime_PROVIDED_AL2023(),
		Handler:     jsii.String("bootstrap"),
		Code:        awslambda.Code_FromAsset(jsii.String("../dist"), nil),
		MemorySize:  jsii.Number(256),
		Timeout:     awscdk.Duration_Seconds(jsii.Number(15)),
		Environment: &env,
	})

	api := awsapigateway.NewLambdaRestApi(stack, jsii.String("LeagueApiGateway"), &awsapigateway.LambdaRestApiProps{
		Handler: lambdaFn,
	})

	awscdk.NewCfnOutput(stack, jsii.String("ApiUrl"), &awscdk.CfnOutputProps{Value: api.Url()})

	return stack
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	app := awscdk.NewApp(nil)
	NewLeagueStack(app, "LeagueStack", &LeagueStackProps{})
	app.Synth(nil)
}
