package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const chainSlugs = "arbitrum base ethereum mumbai optimism polygon sepolia"

const bashCompletion = `_lockwallet() {
    local cur prev words cword
    _init_completion || return

    local commands="init unlock lock wallets ls import export sign balance send tx quote status passwd reset blob audit compact keyring help completion"
    local chains="` + chainSlugs + `"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    if [[ "$prev" == "--chain" ]]; then
        COMPREPLY=($(compgen -W "$chains" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        init)
            COMPREPLY=($(compgen -W "--mnemonic --generate --words" -- "$cur"))
            ;;
        unlock)
            COMPREPLY=($(compgen -W "--remember" -- "$cur"))
            ;;
        import)
            COMPREPLY=($(compgen -W "--chain --name" -- "$cur"))
            ;;
        export|sign|balance)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "--chain --mnemonic --force" -- "$cur"))
            else
                # Complete with wallet ids
                local ids
                ids=$(lockwallet wallets 2>/dev/null | awk 'NR>1 {print $1}')
                COMPREPLY=($(compgen -W "$ids" -- "$cur"))
            fi
            ;;
        send|tx)
            COMPREPLY=($(compgen -W "--chain --wallet" -- "$cur"))
            ;;
        quote)
            COMPREPLY=($(compgen -W "--chain --from --to --amount --slippage --wallet" -- "$cur"))
            ;;
        reset)
            COMPREPLY=($(compgen -W "--force" -- "$cur"))
            ;;
        audit)
            COMPREPLY=($(compgen -W "--limit" -- "$cur"))
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _lockwallet lockwallet
`

const zshCompletion = `#compdef lockwallet

_lockwallet() {
    local -a commands chains
    commands=(
        'init:Create a new wallet vault'
        'unlock:Verify the password, optionally cache it'
        'lock:Forget the cached password'
        'wallets:List wallets'
        'ls:List wallets'
        'import:Import a private key'
        'export:Print a private key or recovery phrase'
        'sign:Sign a 32-byte digest'
        'balance:Show native balance'
        'send:Broadcast a signed transaction'
        'tx:Show transaction status'
        'quote:Get a swap quote'
        'status:Show vault status'
        'passwd:Change vault password'
        'reset:Delete all keys from the vault'
        'blob:Print the encrypted vault blob'
        'audit:Show audit log'
        'compact:Compact vault to reclaim disk space'
        'keyring:Manage password in OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )
    chains=(` + chainSlugs + `)

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'lockwallet commands' commands
            ;;
        args)
            case "${words[2]}" in
                init)
                    _arguments \
                        '--mnemonic[Read a recovery phrase]' \
                        '--generate[Generate a recovery phrase]' \
                        '--words[Words in generated phrase]:words:(12 24)'
                    ;;
                unlock)
                    _arguments '--remember[Cache password in keyring]'
                    ;;
                import)
                    _arguments \
                        '--chain[Chain]:chain:($chains)' \
                        '--name[Wallet name]:name:'
                    ;;
                export|sign|balance)
                    _arguments \
                        '--chain[Chain]:chain:($chains)' \
                        '--mnemonic[Print recovery phrase]' \
                        '--force[Do not ask for confirmation]' \
                        '*:wallet:_lockwallet_wallets'
                    ;;
                send|tx)
                    _arguments \
                        '--chain[Chain]:chain:($chains)' \
                        '--wallet[Wallet]:wallet:_lockwallet_wallets'
                    ;;
                quote)
                    _arguments \
                        '--chain[Chain]:chain:($chains)' \
                        '--from[Sell token]:address:' \
                        '--to[Buy token]:address:' \
                        '--amount[Sell amount in base units]:amount:' \
                        '--slippage[Slippage percent]:percent:' \
                        '--wallet[Wallet]:wallet:_lockwallet_wallets'
                    ;;
                reset)
                    _arguments '--force[Do not ask for confirmation]'
                    ;;
                audit)
                    _arguments '--limit[Number of events]:limit:'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'lockwallet commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_lockwallet_wallets() {
    local -a ids
    ids=(${(f)"$(lockwallet wallets 2>/dev/null | awk 'NR>1 {print $1}')"})
    _describe -t wallets 'wallets' ids
}

_lockwallet "$@"
`

const fishCompletion = `# lockwallet fish completions

set -l commands init unlock lock wallets ls import export sign balance send tx quote status passwd reset blob audit compact keyring help completion
set -l chains ` + chainSlugs + `

complete -c lockwallet -f

# Commands
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a init -d 'Create a new wallet vault'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a unlock -d 'Verify the password'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a lock -d 'Forget the cached password'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a wallets -d 'List wallets'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a ls -d 'List wallets'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a import -d 'Import a private key'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a export -d 'Print a private key'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a sign -d 'Sign a digest'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a balance -d 'Show native balance'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a send -d 'Broadcast a signed transaction'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a tx -d 'Show transaction status'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a quote -d 'Get a swap quote'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show vault status'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a passwd -d 'Change vault password'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a reset -d 'Delete all keys'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a blob -d 'Print encrypted blob'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a audit -d 'Show audit log'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact vault'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage password in OS keyring'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c lockwallet -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# flags
complete -c lockwallet -n "__fish_seen_subcommand_from init" -l mnemonic -d 'Read a recovery phrase'
complete -c lockwallet -n "__fish_seen_subcommand_from init" -l generate -d 'Generate a recovery phrase'
complete -c lockwallet -n "__fish_seen_subcommand_from init" -l words -xa "12 24"
complete -c lockwallet -n "__fish_seen_subcommand_from unlock" -l remember -d 'Cache password in keyring'
complete -c lockwallet -n "__fish_seen_subcommand_from import balance send tx quote" -l chain -xa "$chains"
complete -c lockwallet -n "__fish_seen_subcommand_from import" -l name -d 'Wallet name'
complete -c lockwallet -n "__fish_seen_subcommand_from export" -l mnemonic -d 'Print recovery phrase'
complete -c lockwallet -n "__fish_seen_subcommand_from export reset" -l force -d 'Do not ask for confirmation'
complete -c lockwallet -n "__fish_seen_subcommand_from quote" -l from -l to -l amount -l slippage
complete -c lockwallet -n "__fish_seen_subcommand_from send quote" -l wallet -d 'Wallet id'
complete -c lockwallet -n "__fish_seen_subcommand_from audit" -l limit -d 'Number of events'

# keyring subcommands
complete -c lockwallet -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c lockwallet -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c lockwallet -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
