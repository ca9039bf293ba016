package parser

import (
	"os"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/namsral/flag"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"spinachlang-api/internal/compiler"
	"spinachlang-api/internal/memory"
	"spinachlang-api/internal/middleware"
	"spinachlang-api/internal/validation"
)

// Arguments are the options of the API process. Every flag falls back to the
// environment variable of its upper cased name, e.g. --host reads HOST and
// --compiler-path reads COMPILER_PATH.
type Arguments struct {
	Host   string `validate:"required"`
	Port   int    `validate:"min=1,max=65535"`
	Reload bool

	// Overrides the version reported by the API when set.
	Version string

	Compiler        string `validate:"required,compiler"`
	CompilerPath    string `validate:"required_if=Compiler exec"`
	CompilerArgs    string
	CompilerTimeout time.Duration `validate:"gte=0"`

	LogLevel string `validate:"oneof=trace debug info warn error fatal panic disabled"`

	RateLimit    float64 `validate:"gte=0"`
	RateBurst    int     `validate:"gte=0"`
	RateClients  int     `validate:"gte=1"`
	TrustedProxy bool
	MaxBodySize  int64 `validate:"gte=1"`
	GraphiQL     bool
}

// ParseArguments parses the given command line arguments, falling back to the
// environment for anything not provided, and validates the result.
func ParseArguments(name string, arguments []string) (Arguments, error) {
	args := Arguments{}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.String(flag.DefaultConfigFlagname, "", "path to a config file")

	fs.StringVar(&args.Host, "host", "127.0.0.1", "network address to bind to")
	fs.IntVar(&args.Port, "port", 8000, "network port to bind to")
	fs.BoolVar(&args.Reload, "reload", false, "enable auto-reload")
	fs.StringVar(&args.Version, "version", "", "override the reported version")

	fs.StringVar(&args.Compiler, "compiler", "exec", "the spinachlang compiler implementation ("+strings.Join(compiler.Names(), ", ")+")")
	fs.StringVar(&args.CompilerPath, "compiler-path", "spinachlang", "path of the spinachlang executable")
	fs.StringVar(&args.CompilerArgs, "compiler-args", "", "additional arguments of the spinachlang executable")
	fs.DurationVar(&args.CompilerTimeout, "compiler-timeout", 10*time.Second, "maximum duration of a single compilation")

	fs.StringVar(&args.LogLevel, "log-level", zerolog.InfoLevel.String(), "")

	fs.Float64Var(&args.RateLimit, "rate-limit", 0, "requests per second per client, 0 disables")
	fs.IntVar(&args.RateBurst, "rate-burst", 10, "")
	fs.IntVar(&args.RateClients, "rate-clients", middleware.DefaultMaxClients, "number of clients tracked by the rate limiter")
	fs.BoolVar(&args.TrustedProxy, "trusted-proxy", false, "rate limit clients by X-Forwarded-For")
	fs.Int64Var(&args.MaxBodySize, "max-body-size", memory.Megabyte.Bytes()*2, "maximum request body size in bytes")
	fs.BoolVar(&args.GraphiQL, "graphiql", false, "serve the GraphiQL explorer")

	if err := fs.Parse(arguments); err != nil {
		return args, errors.Wrap(err, "failed to parse arguments")
	}

	return args, args.Validate()
}

// ParseDefaultConfigurationArguments loads the .env file of the working
// directory (if any) and parses the process arguments.
func ParseDefaultConfigurationArguments() (Arguments, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("failed to load .env file")
	}

	args, err := ParseArguments(os.Args[0], os.Args[1:])
	if err != nil {
		return args, err
	}

	log.Info().Msgf("%+v parsed arguments", args)
	return args, nil
}

func (a Arguments) Validate() error {
	validate, translator := validation.New()

	if err := registerCompilerValidation(validate, translator); err != nil {
		return errors.Wrap(err, "failed to register compiler validation")
	}

	if err := validate.Struct(a); err != nil {
		if msgs := validation.TranslateError(err, translator); len(msgs) > 0 {
			return errors.Errorf("invalid arguments: %s", strings.Join(msgs, ", "))
		}

		return errors.Wrap(err, "invalid arguments")
	}

	return nil
}

func (a Arguments) CompilerArguments() []string {
	return strings.Fields(a.CompilerArgs)
}

// registerCompilerValidation adds the compiler rule, accepting the names
// registered in compiler.Compilers.
func registerCompilerValidation(validate *validator.Validate, translator ut.Translator) error {
	err := validate.RegisterValidation("compiler", func(fl validator.FieldLevel) bool {
		_, ok := compiler.Compilers[fl.Field().String()]
		return ok
	})

	if err != nil {
		return err
	}

	return validate.RegisterTranslation("compiler", translator, func(ut ut.Translator) error {
		return ut.Add("compiler", "{0} must be one of [{1}]", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("compiler", fe.Field(), strings.Join(compiler.Names(), " "))
		return t
	})
}
