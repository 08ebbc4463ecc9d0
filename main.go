package main

import "github.com/KaramelBytes/csvprof/cmd"

func main() {
	cmd.Execute()
}
