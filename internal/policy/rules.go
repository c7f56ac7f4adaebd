package policy

// The policy tables. Patterns match against the lower-cased, trimmed
// command, so they are written in lower case. Most are anchored at the
// start of the command; redirection, background, and pipe rules match
// anywhere since the risky construct can follow any prefix.
//
// Keep the tables declarative: one (id, category, pattern) tuple per rule,
// no matching logic outside Classify. The tests in policy_test.go are the
// audit trail for every rule.

// allowRules name read-only subcommands of tools whose other subcommands
// appear in the deny table. Checked before denyRules.
var allowRules = compile([]ruleSpec{
	// Service managers, read-only queries.
	{"systemctl-query", CategoryServiceQuery, `^systemctl\s+(status|show|cat|is-active|is-enabled|is-failed|list-units|list-unit-files|list-timers|list-sockets|list-dependencies)\b`},
	{"service-status", CategoryServiceQuery, `^service\s+\S+\s+status$`},
	{"journalctl", CategoryServiceQuery, `^journalctl\b`},

	// Version control, read-only.
	{"git-readonly", CategoryGitQuery, `^git\s+(status|log|diff|show|blame|shortlog|describe|reflog)\b`},
	{"git-branch-list", CategoryGitQuery, `^git\s+(branch|tag|stash\s+list|remote(\s+-v)?)$`},

	// Package managers, read-only.
	{"apt-query", CategoryPackageQuery, `^(apt|apt-get|apt-cache)\s+(list|show|search|policy|depends)\b`},
	{"dpkg-query", CategoryPackageQuery, `^dpkg\s+(-l|-s|--list|--status|--get-selections)\b`},
	{"rpm-query", CategoryPackageQuery, `^(yum|dnf)\s+(list|info|search|repolist|history)\b`},
	{"pip-query", CategoryPackageQuery, `^pip3?\s+(list|show|freeze)\b`},
	{"npm-query", CategoryPackageQuery, `^npm\s+(ls|list|view|outdated)\b`},
	{"brew-query", CategoryPackageQuery, `^brew\s+(list|info|deps)\b`},

	// Container runtimes and orchestration, read-only.
	{"docker-query", CategoryContainerQuery, `^docker\s+(ps|images|logs|inspect|version|info|stats|top|port|diff|history)\b`},
	{"docker-compose-query", CategoryContainerQuery, `^docker\s+compose\s+(ps|logs|config|version)\b`},
	{"kubectl-query", CategoryContainerQuery, `^kubectl\s+(get|describe|logs|explain|top|version|cluster-info|api-resources|api-versions)\b`},
	{"helm-query", CategoryContainerQuery, `^helm\s+(list|ls|status|history|get|show|version)\b`},

	// Plain system introspection.
	{"process-list", CategorySystemQuery, `^ps(\s|$)`},
	{"top-batch", CategorySystemQuery, `^top\s+-b\b`},
	{"disk-usage", CategorySystemQuery, `^(df|du|free)\b`},
	{"system-identity", CategorySystemQuery, `^(uptime|whoami|uname|id)(\s|$)|^hostname$`},
	{"login-history", CategorySystemQuery, `^(last|lastlog|history|w)(\s|$)`},
})

// denyRules name destructive or exfiltration-risk operations, grouped by
// category. First match wins for reporting; any match denies.
var denyRules = compile([]ruleSpec{
	// Filesystem destruction or overwrite on root/home/glob paths.
	{"rm-recursive-force", CategoryFilesystem, `^rm\s+(?:-[a-z]+\s+)*-[a-z]*(?:r[a-z]*f|f[a-z]*r)`},
	{"rm-protected-path", CategoryFilesystem, `^rm\s+(?:-[a-z]+\s+)*(?:/|~|\$home|[^ ]*\*)`},
	{"copy-into-system-path", CategoryFilesystem, `^(mv|cp)\s+(?:-[a-z]+\s+)*\S+\s+/(etc|bin|sbin|boot|usr|lib|lib64|var|root|sys|proc|dev)(/|\s|$)`},
	{"truncate-system-file", CategoryFilesystem, `^truncate\b.*\s/(etc|bin|sbin|boot|usr|lib|var)/`},

	// Ownership/permission changes on system paths.
	{"chmod-system-path", CategoryPermissions, `^(chmod|chown|chgrp)\b.*\s(/(etc|bin|sbin|boot|usr|var|lib|lib64|root|sys|proc|dev)\S*|/)(\s|$)`},

	// Output redirection into system paths.
	{"redirect-system-path", CategoryRedirection, `>{1,2}\s*/(etc|boot|sys|proc|usr|bin|sbin|lib|var|root)(/|\s|$)`},

	// Low-level disk writes.
	{"dd-device-write", CategoryDiskWrite, `^dd\b.*\bof=/dev/`},
	{"disk-format", CategoryDiskWrite, `^(mkfs|mkswap|fdisk|sfdisk|gdisk|parted|wipefs|shred|blkdiscard)\b`},
	{"redirect-block-device", CategoryDiskWrite, `>{1,2}\s*/dev/(sd|hd|nvme|vd|xvd|loop)`},

	// Service and process control.
	{"systemctl-mutate", CategoryService, `^systemctl\s+(start|stop|restart|reload|try-restart|enable|disable|mask|unmask|kill|isolate|daemon-reload|daemon-reexec)\b`},
	{"service-mutate", CategoryService, `^service\s+\S+\s+(start|stop|restart|reload|force-reload)\b`},
	{"process-kill", CategoryService, `^(kill|pkill|killall)\b`},
	{"system-power", CategoryService, `^(reboot|shutdown|halt|poweroff|telinit)\b|^init\s+[06]\b`},

	// Package install/remove/upgrade.
	{"pkg-manager-mutate", CategoryPackage, `^(apt|apt-get|yum|dnf|zypper|apk)\s+(install|reinstall|remove|purge|upgrade|dist-upgrade|autoremove|update)\b`},
	{"dpkg-mutate", CategoryPackage, `^dpkg\s+(-i|--install|-r|--remove|-p|--purge)\b`},
	{"lang-pkg-mutate", CategoryPackage, `^(pip3?|npm|gem|cargo|snap|brew)\s+(install|uninstall|remove|update|upgrade|refresh)\b`},

	// Firewall and network reconfiguration.
	{"firewall", CategoryNetwork, `^(iptables|ip6tables|nft|firewall-cmd|tc)\b`},
	{"ufw-mutate", CategoryNetwork, `^ufw\s+(enable|disable|allow|deny|reject|delete|insert)\b`},
	{"ip-mutate", CategoryNetwork, `^ip\s+(link|addr|address|route|rule|neigh)\s+(add|del|delete|set|flush|replace|change)\b`},
	{"interface-toggle", CategoryNetwork, `^(ifconfig\s+\S+\s+(up|down)|ifup|ifdown)\b|^route\s+(add|del)\b`},

	// User and credential modification.
	{"account-mutate", CategoryCredential, `^(useradd|userdel|usermod|adduser|deluser|addgroup|delgroup|groupadd|groupdel|groupmod)\b`},
	{"password-mutate", CategoryCredential, `^(passwd|chpasswd|chage|vipw|vigr|visudo)\b`},

	// Privilege escalation.
	{"escalate", CategoryPrivilege, `^(sudo|su|doas|pkexec|runuser)\b`},

	// Destructive version control.
	{"git-transfer", CategoryGit, `^git\s+(push|pull|clone|rm)\b`},
	{"git-hard-reset", CategoryGit, `^git\s+reset\b.*--hard`},
	{"git-clean", CategoryGit, `^git\s+clean\b`},

	// Destructive container/orchestration mutation.
	{"docker-mutate", CategoryContainer, `^docker\s+(rm|rmi|kill|stop|start|restart|run|exec|build|push|pull|create|update|commit|tag|save|load|import|prune)\b`},
	{"docker-subsystem-mutate", CategoryContainer, `^docker\s+(system|volume|network|image|container)\s+(prune|rm|create)\b`},
	{"docker-compose-mutate", CategoryContainer, `^docker\s+compose\s+(up|down|rm|build|restart|start|stop|kill|pull|push)\b`},
	{"kubectl-mutate", CategoryContainer, `^kubectl\s+(apply|create|delete|scale|rollout|patch|replace|edit|exec|drain|cordon|uncordon|taint|label|annotate|set)\b`},
	{"helm-mutate", CategoryContainer, `^helm\s+(install|upgrade|uninstall|delete|rollback|push)\b`},

	// Interactive text editors (would hang a non-interactive channel).
	{"editor", CategoryEditor, `^(vi|vim|nvim|nano|emacs|pico|ed|joe|mcedit)(\s|$)`},

	// Archive extraction.
	{"tar-extract", CategoryArchive, `^tar\s+(-?[a-z]*x[a-z]*\b|--extract)`},
	{"unarchive", CategoryArchive, `^(unzip|gunzip|bunzip2|unrar|unxz)\b|^7z\s+[xe]\b`},

	// Traffic capture.
	{"capture", CategoryCapture, `^(tcpdump|tshark|wireshark|dumpcap|ettercap|ngrep|bettercap)\b`},

	// Compilers and build tools.
	{"compiler", CategoryBuild, `^(gcc|g\+\+|cc|c\+\+|clang|clang\+\+|make|cmake|ninja|javac|rustc|mvn|gradle)\b`},
	{"toolchain-build", CategoryBuild, `^go\s+(build|run|install|generate|test)\b|^cargo\s+(build|run|install)\b|^(npm|yarn|pnpm)\s+(run|build|rebuild)\b`},

	// Backgrounded or detached processes.
	{"background-trailing", CategoryBackground, `&\s*$`},
	{"detach", CategoryBackground, `^(nohup|setsid|disown|screen|tmux)\b`},

	// Pipes into a shell or script interpreter.
	{"pipe-to-shell", CategoryPipeShell, `\|\s*(ba|da|z|k|fi)?sh\b`},
	{"pipe-to-interpreter", CategoryPipeShell, `\|\s*(python[23]?|perl|ruby|node)\b`},
})
