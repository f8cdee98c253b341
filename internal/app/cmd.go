package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はHTTPサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandImport はJSONファイルから店舗データを投入することを示す。
	CommandImport Command = "import"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch Command(args[0]) {
	case CommandMigrate:
		return CommandMigrate
	case CommandImport:
		return CommandImport
	case CommandHealthcheck:
		return CommandHealthcheck
	default:
		return CommandServe
	}
}

// commandArg はサブコマンドに続くi番目の引数を返す。存在しなければ空文字列。
func commandArg(args []string, i int) string {
	if len(args) > i+1 {
		return args[i+1]
	}
	return ""
}
