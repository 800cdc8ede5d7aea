package configloader

import (
	"cmp"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Params 控制配置加载的输入参数。
type Params struct {
	ConfPath string
}

const (
	defaultConfPath       = "configs/config.yaml"
	defaultServiceName    = "movie-profile"
	defaultServiceVersion = "dev"
	defaultEnvironment    = "development"
)

// envOverrides 在文件配置之上应用部署环境注入的值，空值不覆盖。
var envOverrides = []struct {
	key   string
	apply func(b *Bootstrap, v string)
}{
	{"DATABASE_URL", func(b *Bootstrap, v string) { b.Data.Postgres.DSN = v }},
	{"TMDB_API_KEY", func(b *Bootstrap, v string) { b.TMDB.APIKey = v }},
	{"LOCAL_CACHE_PATH", func(b *Bootstrap, v string) { b.Cache.LocalPath = v }},
	{"PORT", func(b *Bootstrap, v string) { b.Server.HTTP.Addr = withPort(b.Server.HTTP.Addr, v) }},
}

var environments = map[string]string{
	"dev":         defaultEnvironment,
	"development": defaultEnvironment,
	"staging":     "staging",
	"prod":        "production",
	"production":  "production",
}

var validate = newValidator()

// newValidator 让校验错误以 YAML 键路径报告字段。
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load 解析配置文件并返回归一化的 RuntimeConfig。
// 查找顺序：显式路径、CONF_PATH、configs/config.yaml；同目录与工作目录下的 .env.local / .env 先于解析载入。
func Load(params Params) (RuntimeConfig, error) {
	confPath := cmp.Or(params.ConfPath, os.Getenv("CONF_PATH"), defaultConfPath)
	if err := overlayDotEnv(confPath); err != nil {
		return RuntimeConfig{}, fmt.Errorf("load env files: %w", err)
	}

	bootstrap, err := loadBootstrap(confPath)
	if err != nil {
		return RuntimeConfig{}, err
	}

	runtime := fromBootstrap(bootstrap)
	runtime.Service = serviceInfoFromEnv()
	fillDefaults(&runtime)
	return runtime, nil
}

func loadBootstrap(confPath string) (*Bootstrap, error) {
	c := config.New(config.WithSource(file.NewSource(confPath)))
	if err := c.Load(); err != nil {
		return nil, fmt.Errorf("load config %q: %w", confPath, err)
	}
	defer c.Close()

	var bootstrap Bootstrap
	if err := c.Scan(&bootstrap); err != nil {
		return nil, fmt.Errorf("scan config %q: %w", confPath, err)
	}
	for _, o := range envOverrides {
		if v := os.Getenv(o.key); v != "" {
			o.apply(&bootstrap, v)
		}
	}
	if err := validate.Struct(&bootstrap); err != nil {
		return nil, fmt.Errorf("validate config %q: %w", confPath, describeValidation(err))
	}
	return &bootstrap, nil
}

// describeValidation 把 validator 的字段错误折叠为一行 "path: tag" 列表。
func describeValidation(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}
	parts := make([]string, 0, len(fields))
	for _, fe := range fields {
		path := strings.TrimPrefix(fe.Namespace(), "Bootstrap.")
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", path, fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", path, fe.Tag()))
	}
	return fmt.Errorf("%s: %w", strings.Join(parts, "; "), err)
}

// overlayDotEnv 依次载入配置目录与工作目录中的 .env.local、.env，后载入的文件覆盖同名变量。
func overlayDotEnv(confPath string) error {
	var dirs []string
	if info, err := os.Stat(confPath); err == nil {
		if info.IsDir() {
			dirs = append(dirs, filepath.Clean(confPath))
		} else {
			dirs = append(dirs, filepath.Dir(confPath))
		}
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}

	var files []string
	for _, dir := range slices.Compact(dirs) {
		for _, name := range []string{".env.local", ".env"} {
			fp := filepath.Join(dir, name)
			if _, err := os.Stat(fp); err == nil && !slices.Contains(files, fp) {
				files = append(files, fp)
			}
		}
	}
	if len(files) == 0 {
		return nil
	}
	return godotenv.Overload(files...)
}

func serviceInfoFromEnv() ServiceInfo {
	env := os.Getenv("APP_ENV")
	if mapped, ok := environments[env]; ok {
		env = mapped
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown-instance"
	}
	return ServiceInfo{
		Name:        cmp.Or(os.Getenv("SERVICE_NAME"), defaultServiceName),
		Version:     cmp.Or(os.Getenv("SERVICE_VERSION"), defaultServiceVersion),
		Environment: cmp.Or(env, defaultEnvironment),
		InstanceID:  host,
	}
}

// withPort 保留监听地址中的主机部分，仅替换端口。
func withPort(addr, port string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return ":" + port
	}
	return net.JoinHostPort(host, port)
}
