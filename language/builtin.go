package language

var builtin = []Language{
	{
		ID:               "c",
		Judge0ID:         50, // C (GCC 9.2.0)
		PistonLanguage:   "c",
		PistonVersion:    "10.2.0",
		SourceFileName:   "main.c",
		CompiledFileName: "a",
		CompileCmd:       "/usr/bin/gcc -O2 -std=c11 -o a main.c -lm",
		RunCmd:           "a",
	},
	{
		ID:               "cpp",
		Judge0ID:         54, // C++ (GCC 9.2.0)
		PistonLanguage:   "c++",
		PistonVersion:    "10.2.0",
		SourceFileName:   "main.cpp",
		CompiledFileName: "a",
		CompileCmd:       "/usr/bin/g++ -O2 -std=c++17 -o a main.cpp",
		RunCmd:           "a",
	},
	{
		ID:             "python",
		Judge0ID:       71, // Python (3.8.1)
		PistonLanguage: "python",
		PistonVersion:  "3.10.0",
		SourceFileName: "main.py",
		RunCmd:         "/usr/bin/python3 main.py",
	},
	{
		ID:             "javascript",
		Judge0ID:       63, // JavaScript (Node.js 12.14.0)
		PistonLanguage: "javascript",
		PistonVersion:  "18.15.0",
		SourceFileName: "main.js",
		RunCmd:         "/usr/bin/node main.js",
	},
}
